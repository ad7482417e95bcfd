// Package repository declares the storage interfaces the service layer
// depends on. Implementations live in subpackages (see repository/sqlite).
package repository

import (
	"context"

	"github.com/sakif/interview-runner/internal/model"
)

type SessionRepository interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	// TouchSession bumps UpdatedAt, e.g. after a submission is saved.
	TouchSession(ctx context.Context, id string) error
}

type SubmissionRepository interface {
	// UpsertSubmission inserts the submission or replaces the existing one for
	// the same session and question. The ID and CreatedAt of an existing row
	// are kept and written back into submission.
	UpsertSubmission(ctx context.Context, submission *model.Submission) error
	GetSubmission(ctx context.Context, sessionID, questionID string) (*model.Submission, error)
	// ListSubmissions returns a session's submissions ordered by question ID.
	ListSubmissions(ctx context.Context, sessionID string) ([]model.Submission, error)
}
