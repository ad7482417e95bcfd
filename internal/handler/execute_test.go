package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/interview-runner/internal/apperror"
	"github.com/sakif/interview-runner/internal/executor"
	"github.com/sakif/interview-runner/internal/handler"
	"github.com/sakif/interview-runner/internal/service"
)

// MockExecutions stands in for the execution service so handler tests run
// without compilers or a model.
type MockExecutions struct {
	CapturedIn  service.ExecuteInput
	CapturedReq executor.ExecutionRequest
	ReturnRes   *executor.ExecutionResult
	ReturnErr   error
	Available   bool
}

func (m *MockExecutions) Execute(_ context.Context, in service.ExecuteInput) (*executor.ExecutionResult, error) {
	m.CapturedIn = in
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnRes, nil
}

func (m *MockExecutions) Simulate(_ context.Context, req executor.ExecutionRequest) (*executor.ExecutionResult, error) {
	m.CapturedReq = req
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnRes, nil
}

func (m *MockExecutions) AIAvailable() bool { return m.Available }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestExecuteHandler_HandleExecute(t *testing.T) {
	logger := testLogger()

	t.Run("valid execution", func(t *testing.T) {
		mockExec := &MockExecutions{
			ReturnRes: &executor.ExecutionResult{
				Output:   "Hello World\n",
				Language: "python",
				Source:   executor.SourceNative,
			},
		}
		h := handler.NewExecuteHandler(mockExec, logger)

		reqBody := `{"code":"print('Hello World')","language":"python"}`
		req := httptest.NewRequest(http.MethodPost, "/api/code-execution", bytes.NewBufferString(reqBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		h.HandleExecute(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var res map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, map[string]any{
			"output":   "Hello World\n",
			"error":    "",
			"language": "python",
			"source":   "native",
		}, res)

		assert.Equal(t, service.ExecuteInput{Code: "print('Hello World')", Language: "python"}, mockExec.CapturedIn)
	})

	t.Run("forceAI is passed through", func(t *testing.T) {
		mockExec := &MockExecutions{ReturnRes: &executor.ExecutionResult{Source: executor.SourceAI}}
		h := handler.NewExecuteHandler(mockExec, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/code-execution",
			strings.NewReader(`{"code":"x","language":"c","forceAI":true}`))
		rr := httptest.NewRecorder()

		h.HandleExecute(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, mockExec.CapturedIn.ForceAI)
	})

	t.Run("invalid request body", func(t *testing.T) {
		h := handler.NewExecuteHandler(&MockExecutions{}, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/code-execution", bytes.NewBufferString(`{"invalid_json":`))
		rr := httptest.NewRecorder()

		h.HandleExecute(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_error", decodeError(t, rr).Code)
	})

	t.Run("empty body", func(t *testing.T) {
		h := handler.NewExecuteHandler(&MockExecutions{}, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/code-execution", http.NoBody)
		rr := httptest.NewRecorder()

		h.HandleExecute(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Request body is required", decodeError(t, rr).Error)
	})

	t.Run("oversized body", func(t *testing.T) {
		h := handler.NewExecuteHandler(&MockExecutions{}, logger)

		big := `{"code":"` + strings.Repeat("a", 2<<20) + `","language":"c"}`
		req := httptest.NewRequest(http.MethodPost, "/api/code-execution", strings.NewReader(big))
		rr := httptest.NewRecorder()

		h.HandleExecute(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Request body is too large", decodeError(t, rr).Error)
	})
}

func TestExecuteHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "unsupported language",
			err:        apperror.ValidationFailed("language", "Language 'ruby' is not supported"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_error",
			wantMsg:    "Language 'ruby' is not supported",
		},
		{
			name:       "toolchain missing, wrapped by the service",
			err:        fmt.Errorf("executing python code: %w", apperror.ToolchainUnavailable("Python execution requires Python to be installed on the server.")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "toolchain_unavailable",
			wantMsg:    "Python execution requires Python to be installed on the server.",
		},
		{
			name:       "staging failure",
			err:        apperror.StagingFailed(errors.New("mkdir /tmp/x: read-only file system")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "staging_failed",
			wantMsg:    "Error staging code for execution.",
		},
		{
			name:       "prepare failure",
			err:        apperror.PrepareFailed(errors.New("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "prepare_failed",
			wantMsg:    "Error preparing code: disk full",
		},
		{
			name:       "missing key",
			err:        apperror.Config("OpenAI API key is not configured."),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "configuration_error",
			wantMsg:    "OpenAI API key is not configured.",
		},
		{
			name:       "model failure",
			err:        apperror.Upstream(errors.New("rate limited")),
			wantStatus: http.StatusBadGateway,
			wantCode:   "upstream_error",
			wantMsg:    "rate limited",
		},
		{
			name:       "queue full",
			err:        apperror.Busy("Too many executions in progress, please retry shortly."),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "busy",
			wantMsg:    "Too many executions in progress, please retry shortly.",
		},
		{
			name:       "client went away",
			err:        fmt.Errorf("executing c code: %w", context.Canceled),
			wantStatus: http.StatusRequestTimeout,
			wantCode:   "canceled",
			wantMsg:    "Request was canceled",
		},
		{
			name:       "unknown error hides details",
			err:        errors.New("open /tmp/secret: permission denied"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
			wantMsg:    "An internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewExecuteHandler(&MockExecutions{ReturnErr: tt.err}, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/code-execution",
				strings.NewReader(`{"code":"x","language":"python"}`))
			rr := httptest.NewRecorder()

			h.HandleExecute(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			body := decodeError(t, rr)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}

func TestExecuteHandler_HandleAIExecute(t *testing.T) {
	mockExec := &MockExecutions{
		ReturnRes: &executor.ExecutionResult{Output: "42", Language: "kotlin", Source: executor.SourceAI},
	}
	h := handler.NewExecuteHandler(mockExec, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/ai-code-execution",
		strings.NewReader(`{"code":"println(42)","language":"kotlin"}`))
	rr := httptest.NewRecorder()

	h.HandleAIExecute(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, executor.ExecutionRequest{Code: "println(42)", Language: "kotlin"}, mockExec.CapturedReq)

	var res executor.ExecutionResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, "42", res.Output)
	assert.Equal(t, executor.SourceAI, res.Source)
}

func TestExecuteHandler_HandleAICheck(t *testing.T) {
	tests := []struct {
		available  bool
		wantStatus int
		wantMsg    string
	}{
		{true, http.StatusOK, "OpenAI API key is configured"},
		{false, http.StatusBadRequest, "OpenAI API key is not configured"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("available=%v", tt.available), func(t *testing.T) {
			h := handler.NewExecuteHandler(&MockExecutions{Available: tt.available}, testLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/ai-code-execution/check", nil)
			rr := httptest.NewRecorder()

			h.HandleAICheck(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			var body handler.AICheckResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.available, body.Available)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}
