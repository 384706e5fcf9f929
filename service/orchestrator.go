// Package service implements the Orchestrator: the driver that takes a
// single work item (a project id to process) through archive fetch,
// extraction, enumeration, the two-pass graph-construction pipeline, CPG
// export, and result publication.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	lua "github.com/viant/luacpg/ast"
	"github.com/viant/luacpg/builder"
	"github.com/viant/luacpg/cpg"
	"github.com/viant/luacpg/export"
	"github.com/viant/luacpg/inserter"
	"github.com/viant/luacpg/internal/archive"
	"github.com/viant/luacpg/internal/errs"
	"github.com/viant/luacpg/internal/repository"
	"github.com/viant/luacpg/internal/storage"
	"github.com/viant/luacpg/internal/transport"
	"github.com/viant/luacpg/internal/walker"
	"github.com/viant/luacpg/store"
	"github.com/viant/luacpg/symtab"
)

// Outcome classifies how a run concluded, per the error-handling design:
// completed on zero failures, partial when at least one file succeeded
// and at least one failed, failed when nothing succeeded or a
// non-recoverable error aborted the run.
type Outcome string

const (
	Completed Outcome = "completed"
	Partial   Outcome = "partial"
	Failed    Outcome = "failed"
)

// WorkItem is one inbound unit of work: a project to fetch and process.
type WorkItem struct {
	ProjectID   string
	Incremental bool
}

// FileError records a single file's failure without aborting the run.
type FileError struct {
	FilePath     string `json:"file_path"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
}

// Result is the structured summary published to the results topic.
type Result struct {
	ProjectID     string      `json:"project_id"`
	Status        Outcome     `json:"status"`
	FilesProcessed int        `json:"files_processed"`
	FilesFailed   int         `json:"files_failed"`
	Errors        []FileError `json:"errors"`
	Message       string      `json:"message"`
}

const (
	topicGraphUpdates = "graph-updates"
	topicResults      = "results"
)

// Orchestrator wires every collaborator package 1-8 depends on:
// storage, archive, project-root detection, walker, the two
// graph-construction passes, and the exporter, publishing through a
// Publisher so production talks to the Dapr sidecar and tests use an
// in-memory double.
type Orchestrator struct {
	storage   *storage.Client
	publisher transport.Publisher
	exporter  *export.Exporter
	detector  *repository.Detector
	logger    zerolog.Logger
}

// New creates an Orchestrator. schema may be nil only in tests that do
// not exercise export validation.
func New(storageClient *storage.Client, publisher transport.Publisher, schema *jsonschema.Schema, clock export.Clock, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		storage:   storageClient,
		publisher: publisher,
		exporter:  export.New(schema, clock),
		detector:  repository.New(),
		logger:    logger,
	}
}

// ProcessProject runs one work item to completion: fetch, extract,
// enumerate, build, export, publish. The temporary directory it
// allocates is released on every exit path.
func (o *Orchestrator) ProcessProject(ctx context.Context, item WorkItem) (Result, error) {
	log := o.logger.With().Str("project_id", item.ProjectID).Logger()

	dir, err := os.MkdirTemp("", "luacpg-"+item.ProjectID+"-")
	if err != nil {
		return o.fail(ctx, item, errs.New(errs.Internal, "allocate temp dir", err))
	}
	defer os.RemoveAll(dir)

	zipPath, err := o.storage.FetchZip(ctx, item.ProjectID, dir)
	if err != nil {
		return o.fail(ctx, item, errs.New(errs.Transport, "fetch archive", err))
	}

	extractRoot, err := archive.Extract(zipPath, filepath.Join(dir, "unzip"))
	if err != nil {
		return o.fail(ctx, item, errs.New(errs.Archive, "extract archive", err))
	}

	projectDir := filepath.Join(dir, "project")
	if err := archive.MaterializeInto(extractRoot, projectDir); err != nil {
		return o.fail(ctx, item, errs.New(errs.Archive, "materialize project", err))
	}

	project, err := o.detector.DetectProject(ctx, projectDir)
	if err != nil {
		return o.fail(ctx, item, errs.New(errs.Archive, "detect project root", err))
	}
	log.Info().Str("project_name", project.Name).Str("root", project.RootPath).Bool("has_rockspec", project.HasRockspec).Msg("detected project root")

	items, err := walker.Enumerate(project.RootPath)
	if err != nil {
		return o.fail(ctx, item, errs.New(errs.Archive, "enumerate project", err))
	}

	s := store.New()
	if err := insertDirectoryTree(s, items); err != nil {
		return o.fail(ctx, item, errs.New(errs.Graph, "insert directory tree", err))
	}

	var fileErrors []FileError
	processed := 0
	for _, it := range items {
		if it.Type != "file" {
			continue
		}
		if err := o.processFile(ctx, s, it.Path); err != nil {
			var fileErr *errs.Error
			if errors.As(err, &fileErr) && fileErr.Kind != errs.Parse {
				return o.fail(ctx, item, fileErr)
			}
			log.Warn().Err(err).Str("file", it.Path).Msg("file processing failed")
			fileErrors = append(fileErrors, FileError{
				FilePath:     it.Path,
				ErrorType:    string(errs.KindOf(err)),
				ErrorMessage: err.Error(),
			})
			continue
		}
		processed++
	}

	outcome := classify(processed, len(fileErrors))
	result := Result{
		ProjectID:      item.ProjectID,
		Status:         outcome,
		FilesProcessed: processed,
		FilesFailed:    len(fileErrors),
		Errors:         fileErrors,
		Message:        summaryMessage(outcome, processed, len(fileErrors)),
	}

	if outcome == Failed {
		return o.publishResult(ctx, result)
	}

	doc, err := o.exporter.Export(s, item.ProjectID, []string{"lua"})
	if err != nil {
		result.Status = Failed
		result.Message = fmt.Sprintf("export failed: %v", err)
		return o.publishResult(ctx, result)
	}

	if err := o.publishGraph(ctx, doc); err != nil {
		return o.fail(ctx, item, errs.New(errs.Transport, "publish graph update", err))
	}

	return o.publishResult(ctx, result)
}

// processFile parses a single file, inserts its syntax tree, then runs the
// symbol pass and the CPG pass, writing its knowledge layer into s. A read
// or syntax error here is a Parse-kind error: recorded per file, the run
// continues. Any other kind aborts the run.
func (o *Orchestrator) processFile(ctx context.Context, s *store.Store, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errs.New(errs.Parse, "read file", err)
	}

	root, err := lua.Parse(ctx, src)
	if err != nil {
		return errs.New(errs.Parse, "parse file", err)
	}
	if lua.HasSyntaxError(root) {
		return errs.New(errs.Parse, "parse file", fmt.Errorf("malformed lua syntax"))
	}

	if err := inserter.New(s).InsertSyntaxTree(root, path); err != nil {
		return errs.New(errs.Graph, "insert syntax tree", err)
	}

	table := symtab.NewTable(path)
	builder.New(path, path, table).Walk(root)
	cpg.New(table, s).Build(root)
	return nil
}

func insertDirectoryTree(s *store.Store, items []walker.Item) error {
	dirItems := make([]inserter.DirItem, 0, len(items))
	for _, it := range items {
		dirItems = append(dirItems, inserter.DirItem{
			Name:       it.Name,
			Path:       it.Path,
			Kind:       it.Type,
			ParentPath: it.Parent,
			HasParent:  it.Parent != "",
		})
	}
	return inserter.New(s).InsertDirectory(dirItems)
}

func classify(processed, failed int) Outcome {
	switch {
	case failed == 0 && processed > 0:
		return Completed
	case failed > 0 && processed > 0:
		return Partial
	default:
		return Failed
	}
}

func summaryMessage(outcome Outcome, processed, failed int) string {
	switch outcome {
	case Completed:
		return fmt.Sprintf("processed %d files", processed)
	case Partial:
		return fmt.Sprintf("processed %d files, %d failed", processed, failed)
	default:
		return "run failed"
	}
}

// fail builds a failed Result from a non-recoverable error and publishes
// it; graph-updates is never published for a failed outcome.
func (o *Orchestrator) fail(ctx context.Context, item WorkItem, err *errs.Error) (Result, error) {
	o.logger.Error().Err(err).Str("project_id", item.ProjectID).Msg("run aborted")
	result := Result{
		ProjectID: item.ProjectID,
		Status:    Failed,
		Message:   err.Error(),
	}
	return o.publishResult(ctx, result)
}

func (o *Orchestrator) publishResult(ctx context.Context, result Result) (Result, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return result, fmt.Errorf("marshal result: %w", err)
	}
	if err := o.publisher.Publish(ctx, topicResults, payload); err != nil {
		return result, fmt.Errorf("publish result: %w", err)
	}
	return result, nil
}

func (o *Orchestrator) publishGraph(ctx context.Context, doc *export.Document) error {
	envelope, err := transport.EncodeGraphEnvelope(doc)
	if err != nil {
		return fmt.Errorf("encode graph envelope: %w", err)
	}
	return o.publisher.Publish(ctx, topicGraphUpdates, []byte(envelope))
}
