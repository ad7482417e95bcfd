package apperror

import (
	"errors"
	"io/fs"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("submission", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("language", "language is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "ToolchainUnavailable wraps ErrUnavailable",
			err:       ToolchainUnavailable("no javac"),
			target:    ErrUnavailable,
			wantMatch: true,
		},
		{
			name:      "PrepareFailed wraps ErrPrepare",
			err:       PrepareFailed(errors.New("disk full")),
			target:    ErrPrepare,
			wantMatch: true,
		},
		{
			name:      "PrepareFailed keeps the cause reachable",
			err:       PrepareFailed(fs.ErrPermission),
			target:    fs.ErrPermission,
			wantMatch: true,
		},
		{
			name:      "StagingFailed wraps ErrStage and keeps the cause",
			err:       StagingFailed(fs.ErrPermission),
			target:    fs.ErrPermission,
			wantMatch: true,
		},
		{
			name:      "StagingFailed does NOT match ErrPrepare",
			err:       StagingFailed(errors.New("disk full")),
			target:    ErrPrepare,
			wantMatch: false,
		},
		{
			name:      "Upstream wraps ErrUpstream",
			err:       Upstream(errors.New("quota exceeded")),
			target:    ErrUpstream,
			wantMatch: true,
		},
		{
			name:      "Busy wraps ErrBusy",
			err:       Busy("queue full"),
			target:    ErrBusy,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("submission", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Config does NOT match ErrUpstream",
			err:       Config("missing key"),
			target:    ErrUpstream,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("session", "abc123"),
			wantMessage: "session not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("code", "Code and language are required"),
			wantMessage: "Code and language are required",
		},
		{
			name:        "PrepareFailed prefixes the cause",
			err:         PrepareFailed(errors.New("permission denied")),
			wantMessage: "Error preparing code: permission denied",
		},
		{
			name:        "StagingFailed hides the cause",
			err:         StagingFailed(errors.New("mkdir /tmp/code-execution-123: no space left on device")),
			wantMessage: "Error staging code for execution.",
		},
		{
			name:        "Upstream passes the message through",
			err:         Upstream(errors.New("rate limited")),
			wantMessage: "rate limited",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("language", "unsupported")

	if err.Field != "language" {
		t.Errorf("Field = %q, want %q", err.Field, "language")
	}
}
