// Package apperror defines the domain errors shared by the service and
// handler layers. Handlers map the sentinels to HTTP status codes; nothing
// below the handler layer knows about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable means a required compiler or interpreter is missing on the host.
	ErrUnavailable = errors.New("toolchain unavailable")
	// ErrStage means the staging directory or source file could not be created.
	ErrStage = errors.New("staging failed")
	// ErrPrepare means the source could not be rewritten for execution.
	ErrPrepare = errors.New("prepare failed")
	// ErrConfig means the server is missing configuration for the requested path.
	ErrConfig = errors.New("configuration error")
	// ErrUpstream wraps failures returned by the language model client.
	ErrUpstream = errors.New("upstream model error")
	// ErrBusy means the native execution queue is full.
	ErrBusy = errors.New("busy")
)

type AppError struct {
	Err     error  // sentinel, used with errors.Is
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	cause   error
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the underlying cause, so errors.Is
// matches either.
func (e *AppError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// ToolchainUnavailable carries the remediation message shown to the caller,
// e.g. "Python execution requires Python to be installed on the server."
func ToolchainUnavailable(message string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: message,
	}
}

// StagingFailed wraps a filesystem failure while staging. The cause stays
// reachable through errors.Is but never reaches the message, which would
// otherwise leak host paths.
func StagingFailed(cause error) *AppError {
	return &AppError{
		Err:     ErrStage,
		Message: "Error staging code for execution.",
		cause:   cause,
	}
}

// PrepareFailed wraps a source-rewrite failure. The message
// always starts with "Error preparing code: ".
func PrepareFailed(cause error) *AppError {
	return &AppError{
		Err:     ErrPrepare,
		Message: "Error preparing code: " + cause.Error(),
		cause:   cause,
	}
}

func Config(message string) *AppError {
	return &AppError{
		Err:     ErrConfig,
		Message: message,
	}
}

// Upstream passes the model client's message through unchanged.
func Upstream(cause error) *AppError {
	return &AppError{
		Err:     ErrUpstream,
		Message: cause.Error(),
		cause:   cause,
	}
}

func Busy(message string) *AppError {
	return &AppError{
		Err:     ErrBusy,
		Message: message,
	}
}
