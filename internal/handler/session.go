package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/interview-runner/internal/auth"
	"github.com/sakif/interview-runner/internal/model"
	"github.com/sakif/interview-runner/internal/service"
)

// Sessions is what SessionHandler needs to start a session.
type Sessions interface {
	Start(ctx context.Context) (*service.StartResult, error)
}

// Submissions is what SessionHandler needs to store answers.
type Submissions interface {
	Save(ctx context.Context, in service.SaveInput) (*model.Submission, error)
	Get(ctx context.Context, sessionID, questionID string) (*model.Submission, error)
	List(ctx context.Context, sessionID string) ([]model.Submission, error)
}

// SessionHandler serves /api/sessions and the submissions beneath it.
//
// Every route except POST /api/sessions sits behind auth.RequireSession, so
// by the time a handler runs the {sessionID} in the URL is the one the
// caller's token was issued for.
type SessionHandler struct {
	sessions     Sessions
	submissions  Submissions
	tokenTTL     time.Duration
	secureCookie bool
	logger       *slog.Logger
}

// NewSessionHandler creates a SessionHandler. secureCookie should be true
// whenever the API is served over HTTPS.
func NewSessionHandler(
	sessions Sessions,
	submissions Submissions,
	tokenTTL time.Duration,
	secureCookie bool,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessions:     sessions,
		submissions:  submissions,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// StartSessionResponse is returned by POST /api/sessions.
type StartSessionResponse struct {
	SessionID string    `json:"sessionId"`
	StartTime time.Time `json:"startTime"`
	Token     string    `json:"token"`
}

// HandleStart creates a session.
//
// HTTP: POST /api/sessions
// RESPONSE: 201 {"sessionId": "...", "startTime": "...", "token": "..."}
//
// The token is returned in the body for API clients and also set as an
// HttpOnly cookie so browsers send it without any script touching it.
func (h *SessionHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	res, err := h.sessions.Start(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    res.Token,
		Path:     "/api/sessions",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusCreated, StartSessionResponse{
		SessionID: res.Session.ID,
		StartTime: res.Session.StartTime,
		Token:     res.Token,
	})
}

type saveSubmissionRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Answer   string `json:"answer"`
}

// HandleSaveSubmission stores the answer to one question, replacing any
// earlier answer to the same question.
//
// HTTP: PUT /api/sessions/{sessionID}/submissions/{questionID}
// REQUEST BODY: {"language": "python", "code": "...", "answer": "..."}
func (h *SessionHandler) HandleSaveSubmission(w http.ResponseWriter, r *http.Request) {
	var req saveSubmissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	sub, err := h.submissions.Save(r.Context(), service.SaveInput{
		SessionID:  chi.URLParam(r, "sessionID"),
		QuestionID: chi.URLParam(r, "questionID"),
		Language:   req.Language,
		Code:       req.Code,
		Answer:     req.Answer,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

// HandleGetSubmission returns one question's stored answer.
//
// HTTP: GET /api/sessions/{sessionID}/submissions/{questionID}
func (h *SessionHandler) HandleGetSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.submissions.Get(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "questionID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// HandleListSubmissions returns all answers of the session, ordered by
// question ID. An empty session yields [].
//
// HTTP: GET /api/sessions/{sessionID}/submissions
func (h *SessionHandler) HandleListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissions.List(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}
