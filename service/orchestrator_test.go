package service

import (
	"archive/zip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/luacpg/export"
	"github.com/viant/luacpg/internal/storage"
	"github.com/viant/luacpg/internal/transport"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func writeProjectZip(t *testing.T, path string, files map[string]string) {
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

func loadSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "schema", "v1", "cpg.export.schema.json"))
	require.NoError(t, err)
	schema, err := export.LoadSchema("cpg.export.schema.json", raw)
	require.NoError(t, err)
	return schema
}

func TestProcessProject_CompletedRunPublishesGraphAndResult(t *testing.T) {
	sourceDir := t.TempDir()
	writeProjectZip(t, filepath.Join(sourceDir, "proj.zip"), map[string]string{
		"main.lua": "local m = require(\"math_utils\")\nlocal function add(a, b) return a + b end\nadd(1, 2)",
	})

	storageClient := storage.New(sourceDir)
	publisher := transport.NewMemoryPublisher()
	schema := loadSchema(t)
	clock := fixedClock{t: time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)}

	orch := New(storageClient, publisher, schema, clock, zerolog.Nop())

	result, err := orch.ProcessProject(context.Background(), WorkItem{ProjectID: "proj.zip"})
	require.NoError(t, err)

	assert.Equal(t, Completed, result.Status)
	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 0, result.FilesFailed)

	require.Len(t, publisher.Messages["results"], 1)
	require.Len(t, publisher.Messages["graph-updates"], 1)

	var published Result
	require.NoError(t, json.Unmarshal(publisher.Messages["results"][0], &published))
	assert.Equal(t, "proj.zip", published.ProjectID)
	assert.Equal(t, Completed, published.Status)
}

func TestProcessProject_MalformedFileYieldsPartialStatus(t *testing.T) {
	sourceDir := t.TempDir()
	writeProjectZip(t, filepath.Join(sourceDir, "proj.zip"), map[string]string{
		"good.lua": "local x = 1",
		"bad.lua":  "local x = (((",
	})

	storageClient := storage.New(sourceDir)
	publisher := transport.NewMemoryPublisher()
	schema := loadSchema(t)
	clock := fixedClock{t: time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)}

	orch := New(storageClient, publisher, schema, clock, zerolog.Nop())

	result, err := orch.ProcessProject(context.Background(), WorkItem{ProjectID: "proj.zip"})
	require.NoError(t, err)

	assert.Equal(t, Partial, result.Status)
	assert.Equal(t, 1, result.FilesProcessed)
	assert.Equal(t, 1, result.FilesFailed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "bad.lua", filepath.Base(result.Errors[0].FilePath))
}

func TestProcessProject_FetchFailureYieldsFailedStatusNoGraphPublish(t *testing.T) {
	storageClient := storage.New(t.TempDir())
	publisher := transport.NewMemoryPublisher()
	schema := loadSchema(t)

	orch := New(storageClient, publisher, schema, nil, zerolog.Nop())

	result, err := orch.ProcessProject(context.Background(), WorkItem{ProjectID: "missing.zip"})
	require.NoError(t, err)

	assert.Equal(t, Failed, result.Status)
	assert.Empty(t, publisher.Messages["graph-updates"])
	require.Len(t, publisher.Messages["results"], 1)
}
