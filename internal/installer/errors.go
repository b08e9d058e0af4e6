package installer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/libinstall/internal/config"
	"github.com/ZebulonRouseFrantzich/libinstall/internal/executor"
	"github.com/ZebulonRouseFrantzich/libinstall/internal/journal"
	"github.com/ZebulonRouseFrantzich/libinstall/internal/payload"
)

// Error kinds. Every failed operation matches exactly one of them with
// errors.Is.
var (
	// ErrConfiguration means the configuration is incomplete or invalid,
	// most commonly because no installation path was set.
	ErrConfiguration = config.ErrConfiguration

	// ErrIO means staging a payload or the helper failed.
	ErrIO = payload.ErrIO

	// ErrPrivilegeUnavailable means elevated execution was requested but
	// cannot be obtained.
	ErrPrivilegeUnavailable = errors.New("elevated privilege unavailable")

	// ErrExecution means the helper reported a failure, could not be
	// started, or the operation was cancelled or timed out. Use errors.As
	// with *ExecutionError for the detail.
	ErrExecution = errors.New("helper execution failed")

	// ErrBusy means another operation holds the cache directory lock.
	ErrBusy = journal.ErrLockExists
)

// ExecutionError carries what the helper printed. Cause is set when the
// operation was stopped by its context.
type ExecutionError struct {
	Lines  []string
	Detail string
	Cause  error
}

func newExecutionError(lines []string) *ExecutionError {
	return &ExecutionError{
		Lines:  append([]string(nil), lines...),
		Detail: strings.Join(lines, "\n"),
	}
}

// Error returns the execution error message.
func (e *ExecutionError) Error() string {
	if e.Detail == "" {
		return ErrExecution.Error()
	}
	return ErrExecution.Error() + ": " + e.Detail
}

// contextError reports a cancelled or expired context as an execution
// failure that still matches the context error.
func contextError(err error) *ExecutionError {
	msg := executor.MsgCancelled
	if errors.Is(err, context.DeadlineExceeded) {
		msg = executor.MsgTimedOut
	}
	return &ExecutionError{Lines: []string{msg}, Detail: msg, Cause: err}
}

// Is reports whether target is ErrExecution.
func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecution
}

// Unwrap returns the context error, if any.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// lockError maps a lock failure onto the error kinds: contention is
// ErrBusy, a stopped context is an execution failure, anything else is an
// I/O failure.
func lockError(err error) error {
	switch {
	case errors.Is(err, journal.ErrLockExists):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return contextError(err)
	default:
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
}
