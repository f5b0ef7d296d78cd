package objcgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objcpb/objcgen/internal/corpora"
	"github.com/objcpb/objcgen/lineparser"
)

func loadPrefixes(t *testing.T, input string) *PrefixRegistry {
	t.Helper()
	var registry PrefixRegistry
	err := registry.LoadExpectedPrefixes(lineparser.NewBlockStream([]byte(input), 7), "test")
	require.NoError(t, err)
	return &registry
}

func TestPrefixRegistryLoad(t *testing.T) {
	registry := loadPrefixes(t, strings.Join([]string{
		"# expected prefixes for the test protos",
		"",
		"foo.bar = FBR",
		"  foo =  'FOO'  # quoted, extra spaces",
		`wire.protos = "WIR"`,
		"",
	}, "\n"))

	require.Equal(t, 3, registry.Len())
	got := map[string]string{}
	registry.Each(func(pkg, prefix string) bool {
		got[pkg] = prefix
		return true
	})
	want := map[string]string{
		"foo.bar":     "FBR",
		"foo":         "FOO",
		"wire.protos": "WIR",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("registry mismatch (-want +got):\n%s", diff)
	}
}

func TestPrefixRegistryLoadBadLine(t *testing.T) {
	var registry PrefixRegistry
	input := "foo = FOO\nbar\n"
	err := registry.LoadExpectedPrefixes(lineparser.NewBlockStream([]byte(input), -1), "expected.txt")
	require.Error(t, err)
	assert.EqualError(t, err,
		"error: expected.txt Line 2, Expected prefixes file line without equal sign: 'bar'.")
	// The first line had already been consumed.
	_, ok := registry.Lookup("foo")
	assert.True(t, ok)
}

func TestPrefixRegistryResolve(t *testing.T) {
	registry := loadPrefixes(t, "foo = FOO\nfoo.bar.baz = FBZ\n")

	prefix, ok := registry.Lookup("foo.bar")
	assert.False(t, ok)
	assert.Equal(t, "", prefix)

	prefix, ok = registry.Resolve("foo.bar.baz")
	assert.True(t, ok)
	assert.Equal(t, "FBZ", prefix)

	// No entry for foo.bar; the nearest ancestor wins.
	prefix, ok = registry.Resolve("foo.bar")
	assert.True(t, ok)
	assert.Equal(t, "FOO", prefix)

	prefix, ok = registry.Resolve("foo.bar.quux.deep")
	assert.True(t, ok)
	assert.Equal(t, "FOO", prefix)

	_, ok = registry.Resolve("other")
	assert.False(t, ok)
}

func TestPrefixRegistryExceptions(t *testing.T) {
	var registry PrefixRegistry
	input := "# packages that opted out\nfoo.legacy\nbar\n"
	err := registry.LoadPackageExceptions(lineparser.NewBlockStream([]byte(input), 3), "exceptions.txt")
	require.NoError(t, err)
	assert.True(t, registry.IsException("foo.legacy"))
	assert.True(t, registry.IsException("bar"))
	assert.False(t, registry.IsException("foo"))
}

func TestPrefixRegistryFiles(t *testing.T) {
	dir := t.TempDir()
	prefixesPath := filepath.Join(dir, "expected_prefixes.txt")
	require.NoError(t, os.WriteFile(prefixesPath, []byte("app = APP\n"), 0o666))
	exceptionsPath := filepath.Join(dir, "exceptions.txt")
	require.NoError(t, os.WriteFile(exceptionsPath, []byte("legacy\n"), 0o666))

	var registry PrefixRegistry
	require.NoError(t, registry.LoadExpectedPrefixesFile(prefixesPath))
	require.NoError(t, registry.LoadPackageExceptionsFile(exceptionsPath))

	prefix, ok := registry.Lookup("app")
	assert.True(t, ok)
	assert.Equal(t, "APP", prefix)
	assert.True(t, registry.IsException("legacy"))

	err := registry.LoadExpectedPrefixesFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestPrefixRegistryWriteTo(t *testing.T) {
	var registry PrefixRegistry
	registry.Add("zebra", "ZBR")
	registry.Add("app.protos", "APP")
	registry.Add("app", "A")

	var b strings.Builder
	n, err := registry.WriteTo(&b)
	require.NoError(t, err)
	want := "app = A\napp.protos = APP\nzebra = ZBR\n"
	assert.Equal(t, want, b.String())
	assert.Equal(t, int64(len(want)), n)
}

// The corpus cases exercise load-then-dump round trips; dumps are
// regenerated with OBJCGEN_REFRESH='**'.
func TestPrefixRegistryCorpus(t *testing.T) {
	corpora.Corpus{
		Root:      "testdata/prefixes",
		Extension: "prefixes",
		Refresh:   "OBJCGEN_REFRESH",
		Outputs:   []corpora.Output{{Extension: "dump"}},
		Test: func(t *testing.T, path, input string) []string {
			var registry PrefixRegistry
			err := registry.LoadExpectedPrefixes(lineparser.NewBlockStream([]byte(input), 5), path)
			require.NoError(t, err)
			var b strings.Builder
			_, err = registry.WriteTo(&b)
			require.NoError(t, err)
			return []string{b.String()}
		},
	}.Run(t)
}
