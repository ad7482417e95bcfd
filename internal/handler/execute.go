package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/interview-runner/internal/executor"
	"github.com/sakif/interview-runner/internal/service"
)

// Executions is what ExecuteHandler needs from the service layer.
// *service.ExecutionService satisfies it.
type Executions interface {
	Execute(ctx context.Context, in service.ExecuteInput) (*executor.ExecutionResult, error)
	Simulate(ctx context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error)
	AIAvailable() bool
}

// ExecuteHandler handles code execution requests.
type ExecuteHandler struct {
	exec   Executions
	logger *slog.Logger
}

// NewExecuteHandler creates a new ExecuteHandler.
func NewExecuteHandler(exec Executions, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		exec:   exec,
		logger: logger,
	}
}

type executeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	ForceAI  bool   `json:"forceAI"`
}

// HandleExecute runs code on the path the configured strategy selects.
//
// HTTP: POST /api/code-execution
// REQUEST BODY: {"code": "print(1)", "language": "python", "forceAI": false}
// RESPONSE:     {"output": "1\n", "error": "", "language": "python", "source": "native"}
//
// A compile error, a non-zero exit or a timeout is still a 200: the
// candidate's program failed, the request did not.
func (h *ExecuteHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid execution request body", slog.String("error", err.Error()))
		writeError(w, h.logger, err)
		return
	}

	result, err := h.exec.Execute(r.Context(), service.ExecuteInput{
		Code:     req.Code,
		Language: req.Language,
		ForceAI:  req.ForceAI,
	})
	if err != nil {
		h.logger.Warn("code execution failed",
			slog.String("language", req.Language),
			slog.String("error", err.Error()),
		)
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleAIExecute always simulates execution with the language model.
//
// HTTP: POST /api/ai-code-execution
// REQUEST BODY: {"code": "...", "language": "..."}
func (h *ExecuteHandler) HandleAIExecute(w http.ResponseWriter, r *http.Request) {
	var req executor.ExecutionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.exec.Simulate(r.Context(), req)
	if err != nil {
		h.logger.Warn("simulated execution failed",
			slog.String("language", req.Language),
			slog.String("error", err.Error()),
		)
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// AICheckResponse reports whether model simulation can be used.
type AICheckResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// HandleAICheck reports whether an API key is configured.
//
// HTTP: GET /api/ai-code-execution/check
// 200 when configured, 400 otherwise, so clients can branch on the status.
func (h *ExecuteHandler) HandleAICheck(w http.ResponseWriter, r *http.Request) {
	if h.exec.AIAvailable() {
		writeJSON(w, http.StatusOK, AICheckResponse{Available: true, Message: "OpenAI API key is configured"})
		return
	}
	writeJSON(w, http.StatusBadRequest, AICheckResponse{Available: false, Message: "OpenAI API key is not configured"})
}
