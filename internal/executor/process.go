package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/libinstall/internal/config"
)

// maxOutputBytes bounds the output captured from one run.
const maxOutputBytes = 64 << 10

// rootUID is what `id -u` prints for a privileged shell.
const rootUID = "0"

// limitWriter discards everything past limit bytes while still reporting
// full writes, so a chatty child never blocks or fails on its pipe.
type limitWriter struct {
	buf   bytes.Buffer
	limit int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if remaining := w.limit - w.buf.Len(); remaining > 0 {
		if len(p) > remaining {
			w.buf.Write(p[:remaining])
		} else {
			w.buf.Write(p)
		}
	}
	return len(p), nil
}

// ProcessExecutor runs commands as child processes. Arguments are passed
// directly to the process; no shell is involved.
type ProcessExecutor struct {
	escalation []string
	timeout    time.Duration
	logger     config.Logger
}

// Option configures a ProcessExecutor.
type Option func(*ProcessExecutor)

// WithTimeout bounds every run. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *ProcessExecutor) {
		e.timeout = d
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(logger config.Logger) Option {
	return func(e *ProcessExecutor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewProcessExecutor creates an executor that elevates by prefixing
// escalation to the command, e.g. ["su", "0"] or ["sudo", "-n"].
func NewProcessExecutor(escalation []string, opts ...Option) *ProcessExecutor {
	e := &ProcessExecutor{
		escalation: append([]string(nil), escalation...),
		logger:     config.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromConfig creates an executor using the escalation prefix and timeout of
// cfg.
func FromConfig(cfg config.Config, logger config.Logger) *ProcessExecutor {
	return NewProcessExecutor(cfg.EscalationArgs(), WithTimeout(cfg.Timeout), WithLogger(logger))
}

// Run implements Executor.
func (e *ProcessExecutor) Run(ctx context.Context, argv []string, elevated bool) Result {
	if len(argv) == 0 {
		return Failure(MsgNotStarted)
	}
	if elevated {
		if len(e.escalation) == 0 {
			return Unavailable()
		}
		argv = append(append([]string(nil), e.escalation...), argv...)
	}

	out, err := e.run(ctx, argv)
	if err == nil {
		return FromOutput(out)
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, context.Canceled):
		return Failure(MsgCancelled)
	case errors.Is(err, context.DeadlineExceeded):
		return Failure(MsgTimedOut)
	case errors.As(err, &exitErr):
		if res := FromOutput(out); !res.OK() {
			return res
		}
		return Failure(fmt.Sprintf("exit status %d", exitErr.ExitCode()))
	default:
		e.logger.Debug("start failed", "argv", argv[0], "error", err)
		return Failure(MsgNotStarted)
	}
}

// CanEscalate runs `id -u` through the escalation prefix and reports
// whether it printed the root uid.
func (e *ProcessExecutor) CanEscalate(ctx context.Context) bool {
	if len(e.escalation) == 0 {
		return false
	}
	argv := append(e.escalation[:len(e.escalation):len(e.escalation)], "id", "-u")
	out, err := e.run(ctx, argv)
	if err != nil {
		e.logger.Debug("escalation probe failed", "error", err)
		return false
	}
	return strings.TrimSpace(string(out)) == rootUID
}

func (e *ProcessExecutor) run(ctx context.Context, argv []string) ([]byte, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	e.logger.Debug("exec", "argv", strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = scrubbedEnv()
	out := &limitWriter{limit: maxOutputBytes}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return out.buf.Bytes(), err
}

// scrubbedEnv passes through only the variables a helper or escalation
// binary needs.
func scrubbedEnv() []string {
	var env []string
	for _, key := range []string{"PATH", "HOME", "LANG", "ANDROID_ROOT", "ANDROID_DATA"} {
		if v, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+v)
		}
	}
	return env
}
