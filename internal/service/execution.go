package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/interview-runner/internal/apperror"
	"github.com/sakif/interview-runner/internal/executor"
	"github.com/sakif/interview-runner/internal/language"
	"github.com/sakif/interview-runner/internal/metrics"
)

// Simulator is an executor backed by a language model. Configured reports
// whether it can be called at all.
type Simulator interface {
	executor.Executor
	Configured() bool
}

// ExecuteInput is one request to the execution endpoint.
type ExecuteInput struct {
	Code     string
	Language string
	// ForceAI selects the model path regardless of the configured strategy.
	ForceAI bool
}

// ExecutionService decides, per request, which executor serves it.
//
// Native path:  validate → probe → stage → prepare → run → normalize → cleanup
// AI path:      validate → build prompt → call model → extract output
//
// Exactly one path produces the result. Under NativeWithAIFallback the AI
// path is taken only when the native executor reports a missing toolchain,
// which it does before staging anything.
type ExecutionService struct {
	registry *language.Registry
	native   executor.Executor
	ai       Simulator
	strategy executor.Strategy
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewExecutionService creates a new ExecutionService. recorder may be nil.
func NewExecutionService(
	registry *language.Registry,
	native executor.Executor,
	ai Simulator,
	strategy executor.Strategy,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *ExecutionService {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &ExecutionService{
		registry: registry,
		native:   native,
		ai:       ai,
		strategy: strategy,
		metrics:  recorder,
		logger:   logger,
	}
}

// Strategy returns the configured strategy.
func (s *ExecutionService) Strategy() executor.Strategy {
	return s.strategy
}

// Execute validates in and runs it on the path the strategy selects.
// Only registered languages are accepted, whichever path serves them.
func (s *ExecutionService) Execute(ctx context.Context, in ExecuteInput) (*executor.ExecutionResult, error) {
	if in.Code == "" || in.Language == "" {
		return nil, apperror.ValidationFailed("code", "Code and language are required")
	}
	if _, ok := s.registry.Lookup(in.Language); !ok {
		return nil, apperror.ValidationFailed("language", fmt.Sprintf("Language '%s' is not supported", in.Language))
	}

	strategy := s.strategy
	if in.ForceAI {
		strategy = executor.AIOnly
	}

	req := executor.ExecutionRequest{Code: in.Code, Language: in.Language}

	switch strategy {
	case executor.AIOnly:
		return s.observe(ctx, req, executor.SourceAI, s.ai)
	case executor.NativeWithAIFallback:
		res, err := s.observe(ctx, req, executor.SourceNative, s.native)
		if err == nil || !errors.Is(err, apperror.ErrUnavailable) || !s.ai.Configured() {
			return res, err
		}
		s.logger.Info("toolchain unavailable, falling back to model simulation",
			slog.String("language", in.Language),
			slog.String("reason", err.Error()),
		)
		return s.observe(ctx, req, executor.SourceAI, s.ai)
	default:
		return s.observe(ctx, req, executor.SourceNative, s.native)
	}
}

// Simulate always uses the model. Any language name is accepted; the
// registry only governs native execution.
func (s *ExecutionService) Simulate(ctx context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	return s.observe(ctx, req, executor.SourceAI, s.ai)
}

// AIAvailable reports whether model simulation is configured.
func (s *ExecutionService) AIAvailable() bool {
	return s.ai.Configured()
}

func (s *ExecutionService) observe(ctx context.Context, req executor.ExecutionRequest, source executor.Source, exec executor.Executor) (*executor.ExecutionResult, error) {
	res, err := exec.Execute(ctx, req)
	s.metrics.ObserveExecution(ctx, s.languageLabel(req.Language), string(source), statusOf(err))
	if err != nil {
		return nil, fmt.Errorf("executing %s code: %w", req.Language, err)
	}
	return res, nil
}

// languageLabel keeps metric label values to the registered set; the model
// path accepts arbitrary language names.
func (s *ExecutionService) languageLabel(id string) string {
	if _, ok := s.registry.Lookup(id); ok {
		return id
	}
	return "other"
}

// statusOf names the error class for metrics labels.
func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperror.ErrValidation):
		return "validation"
	case errors.Is(err, apperror.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, apperror.ErrStage):
		return "stage"
	case errors.Is(err, apperror.ErrPrepare):
		return "prepare"
	case errors.Is(err, apperror.ErrBusy):
		return "busy"
	case errors.Is(err, apperror.ErrUpstream):
		return "upstream"
	case errors.Is(err, apperror.ErrConfig):
		return "config"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
