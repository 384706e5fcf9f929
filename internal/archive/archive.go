// Package archive extracts a fetched project ZIP into a scoped temp
// directory, then copies it into the Orchestrator's working tree with
// otiai10/copy the way the pack's LSP tooling vendors its test fixtures.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cp "github.com/otiai10/copy"
)

// Extract unpacks the ZIP archive at zipPath into a fresh subdirectory of
// dir, returning the extracted tree's root.
func Extract(zipPath, dir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("open archive %s: %w", zipPath, err)
	}
	defer r.Close()

	root := filepath.Join(dir, "extracted")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create extraction root %s: %w", root, err)
	}

	for _, f := range r.File {
		dest := filepath.Join(root, f.Name)
		if !strings.HasPrefix(dest, filepath.Clean(root)+string(os.PathSeparator)) && dest != filepath.Clean(root) {
			return "", fmt.Errorf("archive entry %s escapes extraction root", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return "", fmt.Errorf("create directory %s: %w", dest, err)
			}
			continue
		}
		if err := extractFile(f, dest); err != nil {
			return "", err
		}
	}
	return root, nil
}

func extractFile(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create parent directory for %s: %w", dest, err)
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", f.Name, err)
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return fmt.Errorf("create extracted file %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("write extracted file %s: %w", dest, err)
	}
	return nil
}

// MaterializeInto recursively copies the extracted tree at src into dst,
// used when the Orchestrator needs the sources under a stable, reusable
// working path separate from the scratch extraction directory.
func MaterializeInto(src, dst string) error {
	if err := cp.Copy(src, dst); err != nil {
		return fmt.Errorf("copy %s into %s: %w", src, dst, err)
	}
	return nil
}
