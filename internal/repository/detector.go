// Package repository locates a Lua project's root directory so the
// directory walker knows where enumeration should start, narrowed from
// a polyglot project detector down to the markers and name extraction a
// Lua project actually uses.
package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/viant/afs"
)

// Detector walks up from a starting path looking for Lua project root
// markers.
type Detector struct {
	fs      afs.Service
	markers []string
}

// New creates a Detector recognizing the common Lua project root markers.
func New() *Detector {
	return &Detector{
		fs: afs.New(),
		markers: []string{
			".luarc.json",
			"rockspec",
			".git",
		},
	}
}

// Project describes the detected root.
type Project struct {
	Name     string
	RootPath string
	HasRockspec bool
}

// DetectProject searches upward from path for a marker and returns the
// directory it was found in. If nothing is found, path itself (or its
// parent directory, when path names a file) is returned as the root, named
// after its base directory name.
func (d *Detector) DetectProject(ctx context.Context, path string) (*Project, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve absolute path for %s: %w", path, err)
	}

	startDir := absPath
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", absPath, err)
	}
	if !info.IsDir() {
		startDir = filepath.Dir(absPath)
	}

	root, hasRockspec := d.findRoot(startDir)
	if root == "" {
		root = startDir
	}

	name := filepath.Base(root)
	if hasRockspec {
		if extracted := d.extractRockspecName(ctx, root); extracted != "" {
			name = extracted
		}
	}

	return &Project{Name: name, RootPath: root, HasRockspec: hasRockspec}, nil
}

func (d *Detector) findRoot(startDir string) (root string, hasRockspec bool) {
	dir := startDir
	for {
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				if entry.Name() == ".luarc.json" || entry.Name() == ".git" {
					return dir, hasRockspec
				}
				if filepath.Ext(entry.Name()) == ".rockspec" {
					return dir, true
				}
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

var rockspecPackageName = regexp.MustCompile(`package\s*=\s*["']([^"']+)["']`)

func (d *Detector) extractRockspecName(ctx context.Context, root string) string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".rockspec" {
			continue
		}
		content, err := d.fs.DownloadWithURL(ctx, filepath.Join(root, entry.Name()))
		if err != nil {
			continue
		}
		if matches := rockspecPackageName.FindSubmatch(content); len(matches) == 2 {
			return string(matches[1])
		}
	}
	return ""
}
