package objcgen

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/semaphore"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Generator renders Objective-C source text for protobuf file
// descriptors. Each input file produces a header and an implementation
// file, named after the proto file with the extensions ".pbobjc.h" and
// ".pbobjc.m".
type Generator struct {
	// Options for naming and validation. See GenerationOptions.
	Options GenerationOptions
	// Prefixes supplies expected class prefixes and package exceptions.
	// May be nil, in which case only objc_class_prefix options and
	// UsePackageAsPrefix apply.
	Prefixes *PrefixRegistry
	// MaxParallelism bounds how many files generate concurrently. If
	// unspecified or non-positive, min(NumCPU, GOMAXPROCS) is used.
	MaxParallelism int
}

// GeneratedFile is one output file with its content.
type GeneratedFile struct {
	Name    string
	Content []byte
}

// Generate renders all the given files, in order. Generation runs with
// bounded parallelism; the first failure cancels outstanding work and is
// returned wrapped with the failing file's path.
func (g *Generator) Generate(ctx context.Context, files ...protoreflect.FileDescriptor) ([]GeneratedFile, error) {
	if len(files) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	par := g.MaxParallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(-1)
		if cpus := runtime.NumCPU(); par > cpus {
			par = cpus
		}
	}

	type result struct {
		ready chan struct{}
		files []GeneratedFile
		err   error
	}
	sem := semaphore.NewWeighted(int64(par))
	results := make([]*result, len(files))
	for i, fd := range files {
		fd := fd
		r := &result{ready: make(chan struct{})}
		results[i] = r
		go func() {
			defer close(r.ready)
			if err := sem.Acquire(ctx, 1); err != nil {
				r.err = err
				return
			}
			defer sem.Release(1)
			r.files, r.err = g.generateFile(fd)
		}()
	}

	out := make([]GeneratedFile, 0, 2*len(files))
	for i, r := range results {
		select {
		case <-r.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if r.err != nil {
			return nil, fmt.Errorf("%s: %w", files[i].Path(), r.err)
		}
		out = append(out, r.files...)
	}
	return out, nil
}

func (g *Generator) generateFile(fd protoreflect.FileDescriptor) ([]GeneratedFile, error) {
	prefix, err := g.classPrefix(fd)
	if err != nil {
		return nil, err
	}
	fg := &fileGenerator{
		generator: g,
		file:      fd,
		prefix:    prefix,
		rootClass: prefix + UnderscoresToCamelCase(BaseFileName(fd), true) + "Root",
	}
	base := strings.TrimSuffix(fd.Path(), ".proto")
	return []GeneratedFile{
		{Name: base + ".pbobjc.h", Content: []byte(fg.header())},
		{Name: base + ".pbobjc.m", Content: []byte(fg.implementation())},
	}, nil
}

// classPrefix decides the Objective-C prefix for a file: the file's own
// objc_class_prefix option, then the registry entry for its package (or
// an ancestor package), then a prefix derived from the package when
// UsePackageAsPrefix is set.
func (g *Generator) classPrefix(fd protoreflect.FileDescriptor) (string, error) {
	pkg := string(fd.Package())
	declared := FileClassPrefix(fd)
	if declared != "" {
		if g.Options.PrefixesMustBeRegistered && !g.suppressed(fd) {
			registered, ok := g.registryResolve(pkg)
			if !ok || registered != declared {
				return "", fmt.Errorf(
					"objc_class_prefix %q is not registered for package %q in the expected prefixes file",
					declared, pkg)
			}
		}
		return declared, nil
	}
	if prefix, ok := g.registryResolve(pkg); ok {
		return prefix, nil
	}
	if g.Options.UsePackageAsPrefix && !g.excepted(pkg) {
		if forced := g.Options.PackageAsPrefixForcedPrefix; forced != "" {
			return forced, nil
		}
		return packageToPrefix(pkg), nil
	}
	if g.Options.RequirePrefixes && !g.excepted(pkg) {
		return "", fmt.Errorf("no Objective-C class prefix for package %q and require_prefixes is set", pkg)
	}
	return "", nil
}

func (g *Generator) registryResolve(pkg string) (string, bool) {
	if g.Prefixes == nil {
		return "", false
	}
	return g.Prefixes.Resolve(pkg)
}

func (g *Generator) excepted(pkg string) bool {
	return g.Prefixes != nil && g.Prefixes.IsException(pkg)
}

func (g *Generator) suppressed(fd protoreflect.FileDescriptor) bool {
	for _, path := range g.Options.ExpectedPrefixesSuppressions {
		if path == fd.Path() {
			return true
		}
	}
	return false
}

// packageToPrefix derives a class prefix from a proto package:
// "tutorial.shop_v2" becomes "Tutorial_ShopV2_".
func packageToPrefix(pkg string) string {
	if pkg == "" {
		return ""
	}
	segments := strings.Split(pkg, ".")
	for i, segment := range segments {
		segments[i] = UnderscoresToCamelCase(segment, true)
	}
	return strings.Join(segments, "_") + "_"
}
