// Package corpora runs filesystem-driven golden tests: every file with a
// given extension under a testdata directory is one test case, and the
// expected outputs live next to it as sibling files.
package corpora

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// Corpus describes a golden-test corpus: table-driven tests where the
// "table" lives in the filesystem.
type Corpus struct {
	// Root of the test data directory, relative to the test file that
	// calls Run.
	Root string

	// Extension (without the dot) of the files that define test cases.
	Extension string

	// Refresh names an environment variable. When set, its value is a
	// glob over test-case names; the outputs of matching cases are
	// rewritten from the current results instead of compared, and the
	// run fails so refreshed goldens cannot slip through CI.
	Refresh string

	// Outputs the test produces, one golden file per entry. A missing
	// golden file is treated as expecting empty output.
	Outputs []Output

	// Test runs one case and returns a result per entry in Outputs.
	Test func(t *testing.T, path, input string) []string
}

// Output is one comparable product of a test case.
type Output struct {
	// Extension appended to the case's file name to locate the golden,
	// e.g. "dump" makes "simple.prefixes" look for "simple.prefixes.dump".
	Extension string

	// Compare overrides the byte-for-byte comparison. It returns the
	// empty string on match, otherwise a message describing the mismatch.
	Compare func(got, want string) string
}

// Run executes every case in the corpus as a subtest of t.
func (c Corpus) Run(t *testing.T) {
	root := filepath.Join(callerDir(), c.Root)

	var cases []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.TrimPrefix(filepath.Ext(p), ".") == c.Extension {
			cases = append(cases, p)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("corpora: walking %q: %v", root, err)
	}

	var refresh string
	if c.Refresh != "" {
		refresh = os.Getenv(c.Refresh)
		if !doublestar.ValidatePattern(refresh) {
			t.Fatalf("corpora: %s is not a valid glob: %q", c.Refresh, refresh)
		}
	}
	if refresh != "" {
		t.Logf("corpora: refreshing goldens because %s=%s", c.Refresh, refresh)
		t.Fail()
	}

	for _, casePath := range cases {
		name, _ := filepath.Rel(root, casePath)
		t.Run(name, func(t *testing.T) {
			input, err := os.ReadFile(casePath)
			if err != nil {
				t.Fatalf("corpora: loading input %q: %v", casePath, err)
			}
			results := c.Test(t, name, string(input))
			if len(results) != len(c.Outputs) {
				t.Fatalf("corpora: test returned %d results, want %d", len(results), len(c.Outputs))
			}

			refreshThis, _ := doublestar.Match(refresh, name)
			for i, output := range c.Outputs {
				goldenPath := fmt.Sprint(casePath, ".", output.Extension)
				if refreshThis {
					writeGolden(t, goldenPath, results[i])
					continue
				}
				want, err := os.ReadFile(goldenPath)
				if err != nil && !errors.Is(err, fs.ErrNotExist) {
					t.Errorf("corpora: loading golden %q: %v", goldenPath, err)
					continue
				}
				compare := output.Compare
				if compare == nil {
					compare = diffCompare
				}
				if msg := compare(results[i], string(want)); msg != "" {
					t.Errorf("mismatch for %q:\n%s", goldenPath, msg)
				}
			}
		})
	}
}

func writeGolden(t *testing.T, path, content string) {
	if content == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("corpora: deleting golden %q: %v", path, err)
		}
		return
	}
	if err := os.WriteFile(path, []byte(content), 0o666); err != nil {
		t.Errorf("corpora: writing golden %q: %v", path, err)
	}
}

func diffCompare(got, want string) string {
	if got == want {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

func callerDir() string {
	// Two frames up: callerDir, Corpus.Run, the calling test.
	_, file, _, ok := runtime.Caller(2)
	if !ok {
		panic("corpora: could not determine the test file's directory")
	}
	return filepath.Dir(file)
}
