// Package native runs snippets with the compilers and interpreters installed
// on the host: probe the toolchain, stage the source in a private directory,
// rewrite it where the language needs that, run it under a time limit and
// shape the result.
package native

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/interview-runner/internal/apperror"
	"github.com/sakif/interview-runner/internal/executor"
	"github.com/sakif/interview-runner/internal/language"
	"github.com/sakif/interview-runner/internal/metrics"
)

// Executor implements the executor.Executor interface with host toolchains.
type Executor struct {
	registry *language.Registry
	prober   *Prober
	stager   *Stager
	runner   *Runner
	limiter  *Limiter
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// New creates a native Executor. recorder may be nil.
func New(cfg Config, registry *language.Registry, recorder metrics.Recorder, logger *slog.Logger) *Executor {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &Executor{
		registry: registry,
		prober:   NewProber(cfg, logger),
		stager:   NewStager(cfg.TempDir, logger),
		runner:   NewRunner(cfg, logger),
		limiter:  NewLimiter(cfg, logger),
		metrics:  recorder,
		logger:   logger,
	}
}

// Limiter exposes the admission limiter, e.g. for gauges.
func (e *Executor) Limiter() *Limiter {
	return e.limiter
}

// Execute runs req.Code natively. Unsupported languages fail with
// apperror.ErrValidation and a missing toolchain with apperror.ErrUnavailable,
// both before anything touches the filesystem. A full queue fails with
// apperror.ErrBusy before the toolchain is probed. Compile errors, runtime
// errors and timeouts are results, not errors.
func (e *Executor) Execute(ctx context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	spec, ok := e.registry.Lookup(req.Language)
	if !ok {
		return nil, apperror.ValidationFailed("language", fmt.Sprintf("Language '%s' is not supported", req.Language))
	}

	// The probe spawns a process too, so it counts against the limiter.
	release, err := e.limiter.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if !e.prober.Available(ctx, spec.CheckCommand) {
		return nil, apperror.ToolchainUnavailable(spec.Unavailable())
	}

	area, err := e.stager.Stage(req.Code, spec.Extension)
	if err != nil {
		e.logger.Error("staging failed",
			slog.String("language", string(spec.ID)),
			slog.String("error", err.Error()),
		)
		return nil, apperror.StagingFailed(err)
	}
	defer area.Cleanup()

	resolved, err := spec.PrepareSource(area.SourcePath, area.ID, req.Code)
	if err != nil {
		return nil, apperror.PrepareFailed(err)
	}

	outcome := e.runner.Run(ctx, area.Dir, spec.Render(resolved))
	e.metrics.ObserveRun(ctx, string(spec.ID), outcome.Kind.String(), outcome.Duration)

	e.logger.Info("native execution finished",
		slog.String("language", string(spec.ID)),
		slog.String("outcome", outcome.Kind.String()),
		slog.Int("exitCode", outcome.ExitCode),
		slog.Duration("duration", outcome.Duration),
	)

	if outcome.Kind == OutcomeCanceled {
		return nil, ctx.Err()
	}
	return Normalize(spec.ID, outcome, e.runner.Timeout()), nil
}
