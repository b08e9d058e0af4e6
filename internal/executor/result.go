// Package executor runs helper commands, optionally through a privilege
// escalation prefix, and classifies their outcome.
//
// The helper prints nothing on success, so any captured output is treated
// as a failure report.
package executor

import (
	"context"
	"strings"
)

// Status classifies one command run.
type Status int

const (
	// StatusSuccess means the command ran and printed nothing.
	StatusSuccess Status = iota
	// StatusFailure means the command printed output, exited non-zero, or
	// could not be started.
	StatusFailure
	// StatusUnavailable means elevation was requested but cannot be
	// obtained.
	StatusUnavailable
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Messages used for failures the executor itself detects.
const (
	MsgNotStarted = "process could not be started"
	MsgTimedOut   = "operation timed out"
	MsgCancelled  = "operation cancelled"
)

// Result is the outcome of one run. Output holds the captured lines, in
// order, for failures.
type Result struct {
	Status Status
	Output []string
}

// Success returns a successful result.
func Success() Result {
	return Result{Status: StatusSuccess}
}

// Failure returns a failed result carrying the given lines.
func Failure(lines ...string) Result {
	return Result{Status: StatusFailure, Output: lines}
}

// Unavailable returns the result for a missing privilege.
func Unavailable() Result {
	return Result{Status: StatusUnavailable}
}

// OK reports whether the run succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// FromOutput classifies captured output: empty output is success, anything
// else is a failure whose lines are the non-blank output lines.
func FromOutput(out []byte) Result {
	lines := splitLines(string(out))
	if len(lines) == 0 {
		return Success()
	}
	return Failure(lines...)
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Executor runs helper commands.
//
// Output is the primary failure signal. ProcessExecutor also reports a
// non-zero exit without output as a failure ("exit status N"), so a custom
// helper must exit 0 on success even though it prints nothing.
type Executor interface {
	// Run executes argv, through the escalation prefix when elevated is
	// set, and returns exactly one classified result.
	Run(ctx context.Context, argv []string, elevated bool) Result

	// CanEscalate reports whether elevated runs are currently possible.
	CanEscalate(ctx context.Context) bool
}
