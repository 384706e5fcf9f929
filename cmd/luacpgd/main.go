// Command luacpgd runs the CPG Orchestrator as an HTTP service behind a
// Dapr pub/sub sidecar: it subscribes to parser-code-tasks, builds the
// Code Property Graph for each requested project, and publishes the
// result.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/viant/luacpg/export"
	"github.com/viant/luacpg/internal/config"
	"github.com/viant/luacpg/internal/logging"
	"github.com/viant/luacpg/internal/storage"
	"github.com/viant/luacpg/internal/transport"
	"github.com/viant/luacpg/service"
)

// pubsubComponent is the Dapr pub/sub component name this service
// publishes to and advertises in /dapr/subscribe.
const pubsubComponent = "pubsub"

// taskTimeout bounds a single project's fetch-through-publish run, per
// the 5-minute per-request deadline the resource policy names.
const taskTimeout = 5 * time.Minute

// version is stamped at release time; "dev" outside a tagged build.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "luacpgd",
		Short: "Lua Code Property Graph builder service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the build version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "start the HTTP service (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	logger.Info().Str("port", cfg.AppPort).Msg("starting luacpgd")

	schemaJSON, err := os.ReadFile(cfg.SchemaPath)
	if err != nil {
		return fmt.Errorf("read schema %s: %w", cfg.SchemaPath, err)
	}
	schema, err := export.LoadSchema(cfg.SchemaPath, schemaJSON)
	if err != nil {
		return fmt.Errorf("load schema %s: %w", cfg.SchemaPath, err)
	}

	storageClient := storage.New(cfg.StorageBaseURL)
	publisher := transport.NewDaprPublisher(cfg.DaprHost, pubsubComponent)
	orchestrator := service.New(storageClient, publisher, schema, export.SystemClock(), logger)

	handler := taskHandler(orchestrator, logger)
	router := transport.NewRouter(pubsubComponent, handler)

	addr := ":" + cfg.AppPort
	logger.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, router)
}

// taskHandler decodes an inbound parser-code-tasks message and drives the
// Orchestrator for the named project. Every run publishes a results
// message, even on failure, so a handler error here reflects only a
// malformed inbound message or a transport-level publish failure.
func taskHandler(orchestrator *service.Orchestrator, logger zerolog.Logger) transport.TaskHandler {
	return func(body []byte) error {
		var msg struct {
			ProjectID   string `json:"project_id"`
			Incremental bool   `json:"incremental"`
		}
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("decode task message: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		defer cancel()

		result, err := orchestrator.ProcessProject(ctx, service.WorkItem{
			ProjectID:   msg.ProjectID,
			Incremental: msg.Incremental,
		})
		if err != nil {
			return fmt.Errorf("process project %s: %w", msg.ProjectID, err)
		}
		logger.Info().Str("project_id", msg.ProjectID).Str("status", string(result.Status)).Msg("run finished")
		return nil
	}
}
