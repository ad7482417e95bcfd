package native

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// OutcomeKind classifies how a program run ended.
type OutcomeKind int

const (
	// OutcomeOK means the command exited with status 0.
	OutcomeOK OutcomeKind = iota
	// OutcomeProcessError means the command failed on its own: a compile
	// error, a runtime exception, a non-zero exit, or a failure to start.
	OutcomeProcessError
	// OutcomeTimeout means the wall-clock limit fired and the process group
	// was killed.
	OutcomeTimeout
	// OutcomeCanceled means the caller's context ended before the program did.
	OutcomeCanceled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeProcessError:
		return "process_error"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the raw result of one run.
type Outcome struct {
	Kind     OutcomeKind
	Stdout   string
	Stderr   string
	ExitCode int
	Message  string // failure description when the process printed nothing to stderr
	Duration time.Duration
}

// Runner executes a rendered command line with `sh -c` inside a staging
// directory.
type Runner struct {
	timeout   time.Duration
	waitDelay time.Duration
	maxOutput int
	logger    *slog.Logger
}

// NewRunner creates a runner from cfg.
func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	return &Runner{
		timeout:   cfg.Timeout,
		waitDelay: cfg.WaitDelay,
		maxOutput: cfg.MaxOutputBytes,
		logger:    logger,
	}
}

// Timeout returns the wall-clock limit applied to each run.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// Run executes command in dir. The command runs in its own process group.
// The group is killed when the time limit fires and again once the shell
// exits, so compilers and the programs they launch never outlive the
// request.
func (r *Runner) Run(ctx context.Context, dir, command string) Outcome {
	execCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = dir
	setProcessGroup(cmd)
	cmd.WaitDelay = r.waitDelay

	stdout := newLimitedBuffer(r.maxOutput)
	stderr := newLimitedBuffer(r.maxOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	// Anything the program left running in the background dies with it.
	killProcessGroup(cmd)
	out := Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	switch {
	case err == nil:
		out.Kind = OutcomeOK
	case ctx.Err() != nil:
		out.Kind = OutcomeCanceled
		out.Message = ctx.Err().Error()
	case errors.Is(execCtx.Err(), context.DeadlineExceeded):
		out.Kind = OutcomeTimeout
		r.logger.Warn("execution timed out",
			slog.String("dir", dir),
			slog.Duration("limit", r.timeout),
		)
	default:
		out.Kind = OutcomeProcessError
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			out.Message = fmt.Sprintf("Command failed with exit code %d", out.ExitCode)
		} else {
			out.ExitCode = -1
			out.Message = "Command failed: " + err.Error()
		}
	}
	return out
}

// truncationMarker is appended to a stream that hit the output cap.
const truncationMarker = "\n... output truncated ..."

// limitedBuffer keeps the first limit bytes written to it and silently drops
// the rest, so a runaway print loop cannot exhaust memory. Writes always
// report success to keep the child from seeing EPIPE.
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func newLimitedBuffer(limit int) *limitedBuffer {
	return &limitedBuffer{limit: limit}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.limit <= 0 {
		return b.buf.Write(p)
	}
	room := b.limit - b.buf.Len()
	if room <= 0 {
		b.truncated = len(p) > 0 || b.truncated
		return len(p), nil
	}
	if len(p) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) String() string {
	if b.truncated {
		return b.buf.String() + truncationMarker
	}
	return b.buf.String()
}
