// Package storage fetches a project's source ZIP archive, wrapping
// afs.Service the way analyzer.Analyzer holds one (fs afs.Service) so the
// same code runs against local disk in tests and an HTTP(S) backend in
// production.
package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
)

// Client fetches a project source archive into a local path.
type Client struct {
	fs      afs.Service
	baseURL string
}

// New creates a Client resolving project archives against baseURL. In
// production baseURL is "https://host/projects/source/zip?project_id="
// so the id is appended directly; in tests it is a plain directory and
// the id is path-joined onto it, letting the same code run against both.
func New(baseURL string) *Client {
	return &Client{fs: afs.New(), baseURL: baseURL}
}

func (c *Client) resourceURL(projectID string) string {
	if strings.Contains(c.baseURL, "?") {
		return c.baseURL + projectID
	}
	return path.Join(c.baseURL, projectID)
}

// FetchZip downloads the archive for projectID into dir, returning the
// local file path.
func (c *Client) FetchZip(ctx context.Context, projectID, dir string) (string, error) {
	content, err := c.fs.DownloadWithURL(ctx, c.resourceURL(projectID))
	if err != nil {
		return "", fmt.Errorf("fetch project archive for %s: %w", projectID, err)
	}
	dest := filepath.Join(dir, path.Base(projectID))
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return "", fmt.Errorf("write project archive to %s: %w", dest, err)
	}
	return dest, nil
}
