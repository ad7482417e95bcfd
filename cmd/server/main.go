// Package main is the entry point for the interview runner server.
//
// The main package is kept minimal. Its job is to:
//  1. Read configuration (internal/config, from environment variables)
//  2. Create the logger and make sure the database directory exists
//  3. Start the application (internal/server)
//
// All actual logic lives in imported packages.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/interview-runner/internal/config"
	"github.com/sakif/interview-runner/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Log levels (from least to most severe): Debug → Info → Warn → Error.
	// LOG_LEVEL=debug also logs every probe and staging directory.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// SESSION_SECRET must be a long random string. Use:
	//   SESSION_SECRET=$(openssl rand -hex 32)
	// Without it, tokens are signed with a per-process key and every
	// session token becomes invalid on restart.
	if cfg.SessionSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Error("failed to generate session secret", slog.String("error", err.Error()))
			os.Exit(1)
		}
		cfg.SessionSecret = hex.EncodeToString(buf)
		logger.Warn("SESSION_SECRET not set, using an ephemeral key; session tokens will not survive a restart")
	}

	if cfg.OpenAIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, AI code execution is disabled")
	}

	// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
