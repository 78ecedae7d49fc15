package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanRoot(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.txt"), "bb")
	touch(t, filepath.Join(root, "group", "a.TXT"), "a")
	touch(t, filepath.Join(root, "notes.md"), "x")
	touch(t, filepath.Join(root, ".cache", "c.txt"), "x")
	touch(t, filepath.Join(root, ".hidden.txt"), "x")

	files, err := ScanRoot(root)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(root, "b.txt"), files[0].Path)
	assert.Equal(t, int64(2), files[0].Size)
	assert.Equal(t, filepath.Join(root, "group", "a.TXT"), files[1].Path)
}

func TestScanRoot_Missing(t *testing.T) {
	files, err := ScanRoot(filepath.Join(t.TempDir(), "nope"))
	assert.NoError(t, err)
	assert.Empty(t, files)

	files, err = ScanRoot("")
	assert.NoError(t, err)
	assert.Empty(t, files)
}

func TestStat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.txt")
	touch(t, path, "hello")
	fi, err := Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), fi.Size)
	assert.True(t, filepath.IsAbs(fi.Path))
	assert.NotZero(t, fi.Mtime)

	_, err = Stat(path + ".missing")
	assert.Error(t, err)
}
