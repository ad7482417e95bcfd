package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/interview-runner/internal/apperror"
	"github.com/sakif/interview-runner/internal/model"
	"github.com/sakif/interview-runner/internal/repository"
)

// compile-time check that *DB implements repository.SubmissionRepository
var _ repository.SubmissionRepository = (*DB)(nil)

// UpsertSubmission stores the latest answer for (session, question).
//
// INSERT ... ON CONFLICT DO UPDATE:
// Unlike INSERT OR REPLACE, which deletes the old row and inserts a new one,
// ON CONFLICT updates the existing row in place, so its id and created_at
// survive. We read the row back afterwards so the caller sees the canonical
// record.
func (db *DB) UpsertSubmission(ctx context.Context, sub *model.Submission) error {
	now := time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO submissions (id, session_id, question_id, language, code, answer, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (session_id, question_id) DO UPDATE SET
			language   = excluded.language,
			code       = excluded.code,
			answer     = excluded.answer,
			updated_at = excluded.updated_at`,
		xid.New().String(),
		sub.SessionID,
		sub.QuestionID,
		sub.Language,
		sub.Code,
		sub.Answer,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting submission %s/%s: %w", sub.SessionID, sub.QuestionID, err)
	}

	err = db.conn.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at FROM submissions WHERE session_id = ? AND question_id = ?`,
		sub.SessionID, sub.QuestionID,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: reading back submission %s/%s: %w", sub.SessionID, sub.QuestionID, err)
	}
	return nil
}

// GetSubmission returns the stored answer for one question.
func (db *DB) GetSubmission(ctx context.Context, sessionID, questionID string) (*model.Submission, error) {
	var sub model.Submission
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, session_id, question_id, language, code, answer, created_at, updated_at
		 FROM submissions
		 WHERE session_id = ? AND question_id = ?`,
		sessionID, questionID,
	).Scan(
		&sub.ID,
		&sub.SessionID,
		&sub.QuestionID,
		&sub.Language,
		&sub.Code,
		&sub.Answer,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("submission", sessionID+"/"+questionID)
		}
		return nil, fmt.Errorf("sqlite: getting submission %s/%s: %w", sessionID, questionID, err)
	}
	return &sub, nil
}

// ListSubmissions returns every submission of a session, ordered by
// question ID. An unknown session yields an empty slice.
func (db *DB) ListSubmissions(ctx context.Context, sessionID string) ([]model.Submission, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, session_id, question_id, language, code, answer, created_at, updated_at
		 FROM submissions
		 WHERE session_id = ?
		 ORDER BY question_id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing submissions: %w", err)
	}
	// CRITICAL: always close rows when done!
	defer rows.Close()

	subs := make([]model.Submission, 0)
	for rows.Next() {
		var sub model.Submission
		if err := rows.Scan(
			&sub.ID,
			&sub.SessionID,
			&sub.QuestionID,
			&sub.Language,
			&sub.Code,
			&sub.Answer,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning submission row: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating submission rows: %w", err)
	}

	return subs, nil
}
