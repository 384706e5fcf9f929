package walker

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerate_FiltersToLuaFilesAndTracksParents(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.lua"), []byte("print('hi')"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# readme"), 0o644))

	sub := filepath.Join(root, "lib")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "util.lua"), []byte("return {}"), 0o644))

	items, err := Enumerate(root)
	require.NoError(t, err)

	var luaFiles, dirs []string
	for _, it := range items {
		switch it.Type {
		case "file":
			luaFiles = append(luaFiles, it.Name)
			if it.Name == "util.lua" {
				assert.Equal(t, sub, it.Parent)
			} else {
				assert.Equal(t, root, it.Parent)
			}
		case "dir":
			dirs = append(dirs, it.Name)
		}
	}
	sort.Strings(luaFiles)
	assert.Equal(t, []string{"main.lua", "util.lua"}, luaFiles)
	assert.Contains(t, dirs, "lib")
}

func TestEnumerate_ErrorsOnMissingRoot(t *testing.T) {
	_, err := Enumerate(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
