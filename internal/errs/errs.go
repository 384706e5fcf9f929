// Package errs classifies run failures so the Orchestrator can decide
// per-file-continue vs. run-abort without string-matching error text.
package errs

import (
	"errors"
	"fmt"
)

// Kind names one of the failure categories the Orchestrator distinguishes.
type Kind string

const (
	Transport Kind = "transport"
	Archive   Kind = "archive"
	Parse     Kind = "parse"
	Graph     Kind = "graph"
	Schema    Kind = "schema"
	Internal  Kind = "internal"
)

// Error carries a Kind alongside the wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err under kind, annotated with op (the failing operation).
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind carried by err, or Internal if err isn't one of
// ours — an unclassified failure is treated as run-fatal by default.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
