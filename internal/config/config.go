// Package config reads the server configuration from environment variables.
//
// Every variable is optional. An unset variable takes its default; a set but
// malformed one is a startup error, so a typo in EXEC_TIMEOUT never silently
// falls back to 15s.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/interview-runner/internal/auth"
	"github.com/sakif/interview-runner/internal/executor"
	"github.com/sakif/interview-runner/internal/executor/ai"
	"github.com/sakif/interview-runner/internal/executor/native"
)

// Config is everything main needs to assemble the server.
type Config struct {
	Port     int
	LogLevel slog.Level
	DBPath   string

	// SessionSecret signs session tokens. Empty means main generates an
	// ephemeral one, so tokens do not survive a restart.
	SessionSecret string
	SessionTTL    time.Duration
	SecureCookie  bool

	OpenAIKey     string
	OpenAIBaseURL string
	AI            ai.Config

	Strategy executor.Strategy
	Native   native.Config
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup reads the configuration through lookup, which has the
// signature of os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Config{
		Port:       8080,
		LogLevel:   slog.LevelInfo,
		DBPath:     "data/interviews.db",
		SessionTTL: auth.DefaultTokenTTL,
		AI:         ai.DefaultConfig(),
		Strategy:   executor.NativeOnly,
		Native:     native.DefaultConfig(),
	}

	r := reader{lookup: lookup}

	cfg.Port = r.integer("PORT", cfg.Port)
	if cfg.Port < 1 || cfg.Port > 65535 {
		r.fail("PORT", strconv.Itoa(cfg.Port), "must be between 1 and 65535")
	}

	if v, ok := r.get("LOG_LEVEL"); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			r.fail("LOG_LEVEL", v, "must be one of debug, info, warn, error")
		}
	}

	cfg.DBPath = r.text("DB_PATH", cfg.DBPath)
	cfg.SessionSecret = r.text("SESSION_SECRET", "")
	cfg.SessionTTL = r.duration("SESSION_TTL", cfg.SessionTTL)
	cfg.SecureCookie = r.boolean("SECURE_COOKIE", false)

	cfg.OpenAIKey = r.text("OPENAI_API_KEY", "")
	cfg.OpenAIBaseURL = r.text("OPENAI_BASE_URL", "")
	cfg.AI.Model = r.text("OPENAI_MODEL", cfg.AI.Model)

	if v, ok := r.get("EXEC_STRATEGY"); ok {
		s, err := executor.ParseStrategy(v)
		if err != nil {
			r.fail("EXEC_STRATEGY", v, "must be native, ai or native-with-ai-fallback")
		}
		cfg.Strategy = s
	}

	cfg.Native.Timeout = r.duration("EXEC_TIMEOUT", cfg.Native.Timeout)
	cfg.Native.MaxConcurrent = r.integer("EXEC_MAX_CONCURRENT", cfg.Native.MaxConcurrent)
	cfg.Native.MaxQueue = r.integer("EXEC_MAX_QUEUE", cfg.Native.MaxQueue)
	cfg.Native.QueueWait = r.duration("EXEC_QUEUE_WAIT", cfg.Native.QueueWait)
	cfg.Native.TempDir = r.text("EXEC_TEMP_DIR", cfg.Native.TempDir)
	cfg.Native.ProbeCacheTTL = r.duration("PROBE_CACHE_TTL", cfg.Native.ProbeCacheTTL)

	if cfg.Native.Timeout <= 0 {
		r.fail("EXEC_TIMEOUT", cfg.Native.Timeout.String(), "must be positive")
	}
	if cfg.Native.MaxConcurrent < 1 {
		r.fail("EXEC_MAX_CONCURRENT", strconv.Itoa(cfg.Native.MaxConcurrent), "must be at least 1")
	}
	if cfg.Native.MaxQueue < 0 {
		r.fail("EXEC_MAX_QUEUE", strconv.Itoa(cfg.Native.MaxQueue), "must not be negative")
	}
	if cfg.Native.ProbeCacheTTL < 0 {
		r.fail("PROBE_CACHE_TTL", cfg.Native.ProbeCacheTTL.String(), "must not be negative")
	}

	if r.err != nil {
		return Config{}, r.err
	}
	return cfg, nil
}

// reader keeps the first error so FromLookup can read every field in a
// straight line and check once at the end.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) get(key string) (string, bool) {
	v, ok := r.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *reader) fail(key, value, reason string) {
	if r.err == nil {
		r.err = fmt.Errorf("config: %s=%q %s", key, value, reason)
	}
}

func (r *reader) text(key, def string) string {
	if v, ok := r.get(key); ok {
		return v
	}
	return def
}

func (r *reader) integer(key string, def int) int {
	v, ok := r.get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, "is not an integer")
		return def
	}
	return n
}

func (r *reader) boolean(key string, def bool) bool {
	v, ok := r.get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, "is not a boolean")
		return def
	}
	return b
}

// duration accepts Go duration syntax ("15s", "1m30s") or a bare number of
// milliseconds ("15000").
func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.get(key)
	if !ok {
		return def
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, "is not a duration")
		return def
	}
	return d
}
