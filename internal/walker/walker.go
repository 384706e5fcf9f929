// Package walker enumerates a project directory tree, producing the
// dir/file item list the AST Inserter's two-pass population consumes.
// Ported from the prototype's analyze_project_structure, which emits one
// flat list tagging each entry "dir" or "file" with its parent path.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Item is one directory-tree entry discovered during enumeration.
type Item struct {
	Name   string
	Path   string
	Type   string // "dir" or "file"
	Parent string
}

// Enumerate walks root, returning one Item for root itself (type "dir",
// no parent) followed by one Item per descendant directory and every
// file whose name ends in ".lua".
func Enumerate(root string) ([]Item, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat project root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	items := []Item{{
		Name: filepath.Base(strings.TrimRight(root, string(os.PathSeparator))),
		Path: root,
		Type: "dir",
	}}

	err = filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if path == root {
			return nil
		}
		parent := filepath.Dir(path)
		if entry.IsDir() {
			items = append(items, Item{Name: entry.Name(), Path: path, Type: "dir", Parent: parent})
			return nil
		}
		if strings.HasSuffix(entry.Name(), ".lua") {
			items = append(items, Item{Name: entry.Name(), Path: path, Type: "file", Parent: parent})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
