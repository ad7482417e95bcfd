package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/interview-runner/internal/config"
)

func newTestServer(t *testing.T, env map[string]string) *httptest.Server {
	t.Helper()

	base := map[string]string{
		"DB_PATH":        ":memory:",
		"SESSION_SECRET": "test-secret-at-least-16-chars!!",
		"EXEC_TEMP_DIR":  t.TempDir(),
	}
	for k, v := range env {
		base[k] = v
	}
	cfg, err := config.FromLookup(func(k string) (string, bool) {
		v, ok := base[k]
		return v, ok
	})
	require.NoError(t, err)

	s, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body, token string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := do(t, http.MethodGet, ts.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "coderunner_native_running")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestCodeExecutionRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	t.Run("unsupported language", func(t *testing.T) {
		resp := do(t, http.MethodPost, ts.URL+"/api/code-execution", `{"code":"puts 1","language":"ruby"}`, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Language 'ruby' is not supported", body["error"])
	})

	t.Run("missing code", func(t *testing.T) {
		resp := do(t, http.MethodPost, ts.URL+"/api/code-execution", `{"language":"python"}`, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ai check without key", func(t *testing.T) {
		resp := do(t, http.MethodGet, ts.URL+"/api/ai-code-execution/check", "", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, false, body["available"])
	})

	t.Run("ai execution without key", func(t *testing.T) {
		resp := do(t, http.MethodPost, ts.URL+"/api/ai-code-execution", `{"code":"print(1)","language":"python"}`, "")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "configuration_error", body["code"])
		assert.Contains(t, body["error"], "OPENAI_API_KEY")
	})
}

func TestAICheckWithKey(t *testing.T) {
	ts := newTestServer(t, map[string]string{"OPENAI_API_KEY": "sk-test"})

	resp := do(t, http.MethodGet, ts.URL+"/api/ai-code-execution/check", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionFlow(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := do(t, http.MethodPost, ts.URL+"/api/sessions", "", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var started struct {
		SessionID string `json:"sessionId"`
		Token     string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	require.NotEmpty(t, started.SessionID)
	require.NotEmpty(t, started.Token)

	subsURL := ts.URL + "/api/sessions/" + started.SessionID + "/submissions"

	// No token.
	resp = do(t, http.MethodGet, subsURL, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Token of a different session.
	resp = do(t, http.MethodPost, ts.URL+"/api/sessions", "", "")
	var other struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&other))
	resp = do(t, http.MethodGet, subsURL, "", other.Token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Save twice: the second answer replaces the first.
	resp = do(t, http.MethodPut, subsURL+"/q1", `{"language":"python","code":"print(1)","answer":"first"}`, started.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, http.MethodPut, subsURL+"/q1", `{"language":"python","code":"print(2)","answer":"second"}`, started.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, http.MethodPut, subsURL+"/q0", `{"language":"c","code":"int main(){}"}`, started.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, subsURL, "", started.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var subs []struct {
		QuestionID string `json:"questionId"`
		Code       string `json:"code"`
		Answer     string `json:"answer"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&subs))
	require.Len(t, subs, 2)
	assert.Equal(t, "q0", subs[0].QuestionID)
	assert.Equal(t, "q1", subs[1].QuestionID)
	assert.Equal(t, "print(2)", subs[1].Code)
	assert.Equal(t, "second", subs[1].Answer)

	resp = do(t, http.MethodGet, subsURL+"/q9", "", started.Token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodPut, subsURL+"/q2", `{"language":""}`, started.Token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNew_ShortSecret(t *testing.T) {
	cfg, err := config.FromLookup(func(k string) (string, bool) {
		switch k {
		case "DB_PATH":
			return ":memory:", true
		case "SESSION_SECRET":
			return "short", true
		}
		return "", false
	})
	require.NoError(t, err)

	_, err = New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
