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

// compile-time check that *DB implements repository.SessionRepository
var _ repository.SessionRepository = (*DB)(nil)

// CreateSession inserts a new session. The ID is generated here with xid
// (20 chars, URL-safe, sortable by creation time). A zero StartTime
// defaults to now.
func (db *DB) CreateSession(ctx context.Context, session *model.Session) error {
	session.ID = xid.New().String()

	now := time.Now().UTC()
	if session.StartTime.IsZero() {
		session.StartTime = now
	}
	session.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, start_time, updated_at) VALUES (?, ?, ?)`,
		session.ID,
		session.StartTime,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID. sql.ErrNoRows becomes an
// apperror.NotFound so the handler can answer 404.
func (db *DB) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, start_time, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.StartTime, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session %s: %w", id, err)
	}
	return &s, nil
}

// TouchSession sets updated_at to now.
func (db *DB) TouchSession(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE sessions SET updated_at = ? WHERE id = ?`, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: touching session %s: %w", id, err)
	}

	// RowsAffected tells us if the UPDATE matched anything.
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rows == 0 {
		return apperror.NotFound("session", id)
	}
	return nil
}
