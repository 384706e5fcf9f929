package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestExtract_WritesFilesUnderRoot(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "project.zip")
	writeTestZip(t, zipPath, map[string]string{
		"main.lua":     "print('hi')",
		"lib/util.lua": "return {}",
	})

	root, err := Extract(zipPath, dir)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(root, "main.lua"))
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", string(content))

	content, err = os.ReadFile(filepath.Join(root, "lib", "util.lua"))
	require.NoError(t, err)
	assert.Equal(t, "return {}", string(content))
}

func TestExtract_RejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	writeTestZip(t, zipPath, map[string]string{
		"../../etc/passwd": "nope",
	})

	_, err := Extract(zipPath, dir)
	assert.Error(t, err)
}

func TestMaterializeInto_CopiesTree(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.lua"), []byte("return 1"), 0o644))

	dst := filepath.Join(t.TempDir(), "working")
	require.NoError(t, MaterializeInto(src, dst))

	content, err := os.ReadFile(filepath.Join(dst, "a.lua"))
	require.NoError(t, err)
	assert.Equal(t, "return 1", string(content))
}
