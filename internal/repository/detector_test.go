package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectProject_FindsRockspecRootAndName(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "mylib-1.0.rockspec"), []byte(`package = "mylib"
version = "1.0-1"
`), 0o644))

	sub := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	d := New()
	proj, err := d.DetectProject(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, root, proj.RootPath)
	assert.Equal(t, "mylib", proj.Name)
	assert.True(t, proj.HasRockspec)
}

func TestDetectProject_FallsBackToDirNameWithoutMarkers(t *testing.T) {
	root := t.TempDir()
	d := New()
	proj, err := d.DetectProject(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, root, proj.RootPath)
	assert.Equal(t, filepath.Base(root), proj.Name)
	assert.False(t, proj.HasRockspec)
}
