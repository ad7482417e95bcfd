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

// Validation limits for submissions.
const (
	MaxLanguageLength   = 32
	MaxCodeLength       = 100000 // ~100KB of code
	MaxAnswerLength     = 20000
	MaxQuestionIDLength = 64
)

// SubmissionService stores the candidate's answers, one per question.
type SubmissionService struct {
	sessions    repository.SessionRepository
	submissions repository.SubmissionRepository
	logger      *slog.Logger
}

func NewSubmissionService(
	sessions repository.SessionRepository,
	submissions repository.SubmissionRepository,
	logger *slog.Logger,
) *SubmissionService {
	return &SubmissionService{
		sessions:    sessions,
		submissions: submissions,
		logger:      logger,
	}
}

// SaveInput is one question's answer as sent by the client.
type SaveInput struct {
	SessionID  string
	QuestionID string
	Language   string
	Code       string
	Answer     string
}

// Save validates in and stores it, replacing any earlier submission for
// the same question.
//
// The session must exist: saving against an unknown session is a 404, not
// a foreign-key failure surfacing as a 500.
func (s *SubmissionService) Save(ctx context.Context, in SaveInput) (*model.Submission, error) {
	in.SessionID = strings.TrimSpace(in.SessionID)
	in.QuestionID = strings.TrimSpace(in.QuestionID)
	in.Language = strings.TrimSpace(in.Language)

	if err := validateSubmission(in); err != nil {
		return nil, err
	}

	if _, err := s.sessions.GetSession(ctx, in.SessionID); err != nil {
		return nil, err
	}

	sub := &model.Submission{
		SessionID:  in.SessionID,
		QuestionID: in.QuestionID,
		Language:   in.Language,
		Code:       in.Code,
		Answer:     in.Answer,
	}
	if err := s.submissions.UpsertSubmission(ctx, sub); err != nil {
		s.logger.Error("failed to save submission",
			slog.String("session_id", in.SessionID),
			slog.String("question_id", in.QuestionID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving submission: %w", err)
	}

	// A failed touch only loses the activity timestamp; the answer is saved.
	if err := s.sessions.TouchSession(ctx, in.SessionID); err != nil {
		s.logger.Warn("failed to touch session",
			slog.String("session_id", in.SessionID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("submission saved",
		slog.String("session_id", sub.SessionID),
		slog.String("question_id", sub.QuestionID),
		slog.String("language", sub.Language),
	)

	return sub, nil
}

// List returns every submission of a session, ordered by question ID.
// Returns apperror.ErrNotFound if the session doesn't exist.
func (s *SubmissionService) List(ctx context.Context, sessionID string) ([]model.Submission, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperror.ValidationFailed("sessionId", "session ID is required")
	}

	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	subs, err := s.submissions.ListSubmissions(ctx, sessionID)
	if err != nil {
		s.logger.Error("failed to list submissions",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	return subs, nil
}

// Get returns the stored answer for one question.
func (s *SubmissionService) Get(ctx context.Context, sessionID, questionID string) (*model.Submission, error) {
	sessionID = strings.TrimSpace(sessionID)
	questionID = strings.TrimSpace(questionID)
	if sessionID == "" {
		return nil, apperror.ValidationFailed("sessionId", "session ID is required")
	}
	if questionID == "" {
		return nil, apperror.ValidationFailed("questionId", "question ID is required")
	}
	return s.submissions.GetSubmission(ctx, sessionID, questionID)
}

func validateSubmission(in SaveInput) error {
	switch {
	case in.SessionID == "":
		return apperror.ValidationFailed("sessionId", "session ID is required")
	case in.QuestionID == "":
		return apperror.ValidationFailed("questionId", "question ID is required")
	case len(in.QuestionID) > MaxQuestionIDLength:
		return apperror.ValidationFailed("questionId",
			fmt.Sprintf("question ID must be %d characters or less", MaxQuestionIDLength))
	case in.Language == "":
		return apperror.ValidationFailed("language", "language is required")
	case len(in.Language) > MaxLanguageLength:
		return apperror.ValidationFailed("language",
			fmt.Sprintf("language must be %d characters or less", MaxLanguageLength))
	case len(in.Code) > MaxCodeLength:
		return apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	case len(in.Answer) > MaxAnswerLength:
		return apperror.ValidationFailed("answer",
			fmt.Sprintf("answer must be %d characters or less", MaxAnswerLength))
	}
	return nil
}
