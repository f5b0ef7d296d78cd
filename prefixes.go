package objcgen

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/btree"

	"github.com/objcpb/objcgen/lineparser"
)

// PrefixRegistry holds the expected Objective-C class prefixes for proto
// packages, plus the set of packages exempt from prefix requirements.
// Entries iterate in package order, so dumps and validation output are
// deterministic.
//
// The zero value is an empty registry ready for use.
type PrefixRegistry struct {
	prefixes   btree.Map[string, string]
	exceptions btree.Set[string]
}

// Add records the expected prefix for a package, replacing any previous
// entry. The empty package key supplies the prefix for files without a
// package.
func (r *PrefixRegistry) Add(pkg, prefix string) {
	r.prefixes.Set(pkg, prefix)
}

// Len returns the number of package-to-prefix entries.
func (r *PrefixRegistry) Len() int {
	return r.prefixes.Len()
}

// Lookup returns the prefix registered for exactly pkg.
func (r *PrefixRegistry) Lookup(pkg string) (string, bool) {
	return r.prefixes.Get(pkg)
}

// Resolve returns the prefix for pkg, falling back to the nearest
// ancestor package with an entry: "foo.bar.baz" is tried, then
// "foo.bar", then "foo".
func (r *PrefixRegistry) Resolve(pkg string) (string, bool) {
	for {
		if prefix, ok := r.prefixes.Get(pkg); ok {
			return prefix, true
		}
		dot := strings.LastIndexByte(pkg, '.')
		if dot < 0 {
			return "", false
		}
		pkg = pkg[:dot]
	}
}

// Each calls fn for every entry in package order until fn returns false.
func (r *PrefixRegistry) Each(fn func(pkg, prefix string) bool) {
	r.prefixes.Scan(fn)
}

// AddException marks a package as exempt from prefix requirements.
func (r *PrefixRegistry) AddException(pkg string) {
	r.exceptions.Insert(pkg)
}

// IsException reports whether a package was listed in an exceptions file.
func (r *PrefixRegistry) IsException(pkg string) bool {
	return r.exceptions.Contains(pkg)
}

// WriteTo dumps the registry as "package = prefix" lines in package
// order. The output parses back with LoadExpectedPrefixes.
func (r *PrefixRegistry) WriteTo(w io.Writer) (int64, error) {
	var total int64
	var err error
	r.prefixes.Scan(func(pkg, prefix string) bool {
		var n int
		n, err = fmt.Fprintf(w, "%s = %s\n", pkg, prefix)
		total += int64(n)
		return err == nil
	})
	return total, err
}

// LoadExpectedPrefixes reads "package = prefix" lines from input into the
// registry. Prefixes may be single or double quoted; quotes are removed.
// label prefixes any diagnostic, and is typically the file name.
func (r *PrefixRegistry) LoadExpectedPrefixes(input lineparser.InputStream, label string) error {
	collector := &packageToPrefixCollector{usage: "Expected prefixes", registry: r}
	return lineparser.ParseSimpleStream(input, label, collector)
}

// LoadExpectedPrefixesFile reads an expected-prefixes file from disk.
func (r *PrefixRegistry) LoadExpectedPrefixesFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.LoadExpectedPrefixes(lineparser.NewReaderStream(f, 0), path)
}

// LoadPackageExceptions reads a package-per-line exceptions list from
// input into the registry.
func (r *PrefixRegistry) LoadPackageExceptions(input lineparser.InputStream, label string) error {
	return lineparser.ParseSimpleStream(input, label,
		lineparser.LineConsumerFunc(func(line string, lineNumber int) error {
			r.AddException(line)
			return nil
		}))
}

// LoadPackageExceptionsFile reads a package exceptions file from disk.
func (r *PrefixRegistry) LoadPackageExceptionsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.LoadPackageExceptions(lineparser.NewReaderStream(f, 0), path)
}

// packageToPrefixCollector parses "package = prefix" lines. The package
// and prefix are not themselves validated; the file is assumed to be
// checked when it is edited.
type packageToPrefixCollector struct {
	usage    string
	registry *PrefixRegistry
}

func (c *packageToPrefixCollector) ConsumeLine(line string, lineNumber int) error {
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return fmt.Errorf("%s file line without equal sign: '%s'.", c.usage, line)
	}
	pkg := strings.Trim(line[:eq], " \t")
	prefix := maybeUnquote(strings.Trim(line[eq+1:], " \t"))
	c.registry.Add(pkg, prefix)
	return nil
}

func maybeUnquote(s string) string {
	if len(s) >= 2 &&
		(s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
