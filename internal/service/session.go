// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take their collaborators as interfaces (repository.SessionRepository,
// executor.Executor, ...), never concrete types. main.go decides which
// implementation to pass; tests pass hand-written fakes.
//
// Services return apperror values, never HTTP status codes. The handler
// translates them.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/interview-runner/internal/apperror"
	"github.com/sakif/interview-runner/internal/model"
	"github.com/sakif/interview-runner/internal/repository"
)

// TokenIssuer signs a session token for a session ID.
// *auth.TokenService satisfies it.
type TokenIssuer interface {
	Generate(sessionID string) (string, error)
}

// SessionService starts interview sessions and hands out the token that
// guards their submissions.
type SessionService struct {
	sessions repository.SessionRepository
	tokens   TokenIssuer
	logger   *slog.Logger
}

func NewSessionService(sessions repository.SessionRepository, tokens TokenIssuer, logger *slog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// StartResult bundles the new session and its signed token so the handler
// can set the cookie and respond in one step.
type StartResult struct {
	Session *model.Session
	Token   string
}

// Start creates a session starting now and issues its token.
func (s *SessionService) Start(ctx context.Context) (*StartResult, error) {
	session := &model.Session{}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		s.logger.Error("failed to create session", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating session: %w", err)
	}

	token, err := s.tokens.Generate(session.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token for session %s: %w", session.ID, err)
	}

	s.logger.Info("session started", slog.String("session_id", session.ID))

	return &StartResult{Session: session, Token: token}, nil
}

// Get returns a session by ID.
// Returns apperror.ErrNotFound if the session doesn't exist.
func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("sessionId", "session ID is required")
	}
	return s.sessions.GetSession(ctx, id)
}
