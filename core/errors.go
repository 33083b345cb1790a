// Package core holds cross-cutting types shared by every optimization
// component: the error taxonomy, the session context, and progress
// reporting. Core packages never read the environment or a config file
// directly — callers resolve those at the CLI boundary and pass a Session.
package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for every error kind in the design. Callers compare with
// errors.Is; wrapping with fmt.Errorf("...: %w", ...) keeps context without
// losing the comparable kind.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrMissingField      = errors.New("missing field")
	ErrInvalidShape      = errors.New("invalid shape")
	ErrEmptyRoi          = errors.New("empty roi")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrNumericalFailure  = errors.New("numerical failure")
	ErrCancelled         = errors.New("cancelled")
	ErrIO                = errors.New("io error")
	ErrNoValidRuns       = errors.New("no valid runs")
)

// Wrap attaches a human-readable message to a sentinel error while keeping
// it comparable with errors.Is(err, sentinel).
func Wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}
