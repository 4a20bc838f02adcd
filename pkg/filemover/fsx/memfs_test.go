package fsx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemFileSystemMkdirAllCreatesAncestors(t *testing.T) {
	m := NewMemFileSystem()
	require.NoError(t, m.MkdirAll("a/b/c", 0o755))

	assert.Equal(t, []string{"a", "a/b", "a/b/c"}, sortedPaths(m))
}

func TestMemFileSystemRenameMovesDescendantsDeterministically(t *testing.T) {
	m := NewMemFileSystem()
	require.NoError(t, m.WriteFile("src/inner/file.txt", []byte("x"), 0o644))
	require.NoError(t, m.Rename("src", "dst"))

	got := sortedPaths(m)
	for _, p := range got {
		assert.NotContains(t, p, "src")
	}
	assert.Contains(t, got, "dst")
	assert.Contains(t, got, "dst/inner")
	assert.Contains(t, got, "dst/inner/file.txt")
}

func TestMemFileSystemRemoveAllDeletesEverythingNested(t *testing.T) {
	m := NewMemFileSystem()
	require.NoError(t, m.WriteFile("keep/file.txt", []byte("x"), 0o644))
	require.NoError(t, m.WriteFile("gone/a/file.txt", []byte("y"), 0o644))
	require.NoError(t, m.RemoveAll("gone"))

	got := sortedPaths(m)
	assert.Equal(t, []string{"keep", "keep/file.txt"}, got)
}
