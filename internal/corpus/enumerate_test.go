package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		p := filepath.Join(root, filepath.FromSlash(r))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func TestEnumerate_SortedAndIndexed(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "mozart/k545.mid", "bach/bwv772.mid", "bach/bwv773.mid", "chopin/op28.mid", "bach/notes.txt")

	items, err := Enumerate(filepath.Join(root, "*", "*.mid"))
	require.NoError(t, err)
	require.Len(t, items, 4)

	base := filepath.ToSlash(root)
	want := []string{
		base + "/bach/bwv772.mid",
		base + "/bach/bwv773.mid",
		base + "/chopin/op28.mid",
		base + "/mozart/k545.mid",
	}
	for i, it := range items {
		assert.Equal(t, want[i], it.Path)
		assert.Equal(t, i, it.Index)
	}
}

func TestEnumerate_Recursive(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.mid", "x/b.mid", "x/y/c.MID", "x/y/z/d.mid")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir.mid"), 0o755))

	items, err := Enumerate(filepath.Join(root, "**", "*.{mid,MID}"))
	require.NoError(t, err)

	var rel []string
	for _, it := range items {
		r, err := filepath.Rel(root, filepath.FromSlash(it.Path))
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"a.mid", "x/b.mid", "x/y/c.MID", "x/y/z/d.mid"}, rel)
}

func TestEnumerate_Empty(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "readme.txt")

	_, err := Enumerate(filepath.Join(root, "*.mid"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	var ee *EnumerationError
	require.ErrorAs(t, err, &ee)
	assert.Contains(t, ee.Pattern, "*.mid")
}

func TestEnumerate_BadPattern(t *testing.T) {
	tests := []string{"", "   ", "data/[abc.mid", "data/{a,b.mid"}
	for _, pattern := range tests {
		t.Run(pattern, func(t *testing.T) {
			_, err := Enumerate(pattern)
			assert.ErrorIs(t, err, ErrBadPattern)
		})
	}
}

func TestEnumeratePatterns_UnionDeduplicated(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.mid", "b.midi", "c.mid")

	items, err := EnumeratePatterns([]string{
		filepath.Join(root, "*.mid"),
		filepath.Join(root, "*.midi"),
		filepath.Join(root, "a.mid"),
	})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, filepath.ToSlash(filepath.Join(root, "b.midi")), items[1].Path)
}

func TestEnumeratePatterns_None(t *testing.T) {
	_, err := EnumeratePatterns(nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "data/a.mid", Normalize("./data//a.mid"))
	assert.Equal(t, "a.mid", Normalize("a.mid"))
}
