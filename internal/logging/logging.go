// Package logging wraps zerolog with the fields every run-scoped
// operation carries: project id, file path, and pipeline phase.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a logger writing level-tagged JSON lines to w, at the level
// named by levelName ("debug", "info", "warn", "error", or any other level
// name zerolog recognises; an empty or unrecognised name falls back to
// "info").
func New(w io.Writer, levelName string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// NewFromEnv builds a logger from $LOG_LEVEL, writing to stderr.
func NewFromEnv() zerolog.Logger {
	return New(os.Stderr, os.Getenv("LOG_LEVEL"))
}

// ForRun returns a child logger with project_id and phase fields set,
// used for the duration of one ProcessProject call.
func ForRun(base zerolog.Logger, projectID, phase string) zerolog.Logger {
	return base.With().Str("project_id", projectID).Str("phase", phase).Logger()
}

// ForFile returns a child logger additionally scoped to one source file.
func ForFile(base zerolog.Logger, filePath string) zerolog.Logger {
	return base.With().Str("file_path", filePath).Logger()
}
