package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// CookieName is the HttpOnly cookie that carries the session token.
const CookieName = "session"

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of type contextKey, so no other
// package can read or shadow the session ID stored in the context.
type contextKey string

const sessionIDKey contextKey = "sessionID"

// RequireSession guards routes under /api/sessions/{sessionID}.
//
// The token comes from an "Authorization: Bearer <token>" header, or from
// the "session" cookie when no bearer header is sent.
// A missing or invalid token is 401; a valid token for a different session
// is 403. On success the session ID is stored in the request context.
//
// param names the chi URL parameter holding the session ID. It must be
// mounted after the route pattern is matched (inside r.Route / r.With),
// otherwise chi.URLParam returns "".
func RequireSession(tokens *TokenService, param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "a session token is required")
				return
			}

			sessionID, err := tokens.Validate(raw)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "session token is invalid or expired")
				return
			}

			if sessionID != chi.URLParam(r, param) {
				writeAuthError(w, http.StatusForbidden, "forbidden", "session token does not grant access to this session")
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the session ID stored by RequireSession.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

// tokenFromRequest prefers an explicit bearer header over the cookie, which
// the browser may still hold from an older session.
func tokenFromRequest(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > len("Bearer ") && strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
		if token := strings.TrimSpace(h[len("Bearer "):]); token != "" {
			return token
		}
	}

	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// writeAuthError writes the same {"error", "code"} shape the handlers use.
// It lives here because handler imports auth, not the other way round.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}
