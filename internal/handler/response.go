// Package handler contains the HTTP handlers of the API.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming HTTP request (URL params, body, headers)
//  2. Call the service layer
//  3. Write the HTTP response (status code, headers, body)
//
// Handlers hold no business rules. They depend on small interfaces declared
// next to them, so tests can drive them with fakes and httptest.
package handler

// RESPONSE HELPERS:
// Every error response from the API has the same shape:
//
//	{"error": "Language 'ruby' is not supported", "code": "validation_error"}
//
// "error" is the human-readable message, "code" the machine-readable type.

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/interview-runner/internal/apperror"
)

// maxBodyBytes bounds request bodies. Code is capped at 100000 bytes by the
// service; the rest is JSON overhead and escaping.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error string `json:"error"` // Human-readable description
	Code  string `json:"code"`  // Machine-readable error type (e.g., "not_found")
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set BEFORE writing the body. Once Encode calls
// w.Write, the headers are sent and later changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent, we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps a domain error to an HTTP status and error code.
//
// errors.Is walks the whole chain, so a service error like
// fmt.Errorf("executing python code: %w", apperror.ToolchainUnavailable(...))
// still matches ErrUnavailable.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrUnavailable):
		return http.StatusInternalServerError, "toolchain_unavailable"
	case errors.Is(err, apperror.ErrStage):
		return http.StatusInternalServerError, "staging_failed"
	case errors.Is(err, apperror.ErrPrepare):
		return http.StatusInternalServerError, "prepare_failed"
	case errors.Is(err, apperror.ErrConfig):
		return http.StatusInternalServerError, "configuration_error"
	case errors.Is(err, apperror.ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, apperror.ErrBusy):
		return http.StatusServiceUnavailable, "busy"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, "canceled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError maps a domain error to the appropriate HTTP status and sends it.
//
// Only AppError messages reach the client. Anything else may carry SQL, file
// paths or other internals, so it is logged and replaced by a generic message.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, code := statusFor(err)

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, status, ErrorResponse{Error: appErr.Message, Code: code})
		return
	}

	if code == "canceled" {
		writeJSON(w, status, ErrorResponse{Error: "Request was canceled", Code: code})
		return
	}

	logger.Error("internal error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: "An internal error occurred",
		Code:  "internal_error",
	})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperror.ValidationFailed("body", "Request body is too large")
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("body", "Request body is required")
		default:
			return apperror.ValidationFailed("body", "Invalid JSON body")
		}
	}
	return nil
}
