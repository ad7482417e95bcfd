// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer. It connects handlers, middleware and
// routes, and decides how the server starts and stops gracefully.
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go: config.Load → server.New
//	server.New: sqlite.DB → SessionService / SubmissionService → SessionHandler
//	            language.Registry → native.Executor ┐
//	            go-openai client  → ai.Simulator    ┴→ ExecutionService → ExecuteHandler
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/interview-runner/internal/auth"
	"github.com/sakif/interview-runner/internal/config"
	"github.com/sakif/interview-runner/internal/executor/ai"
	"github.com/sakif/interview-runner/internal/executor/native"
	"github.com/sakif/interview-runner/internal/handler"
	"github.com/sakif/interview-runner/internal/language"
	"github.com/sakif/interview-runner/internal/metrics"
	"github.com/sakif/interview-runner/internal/middleware"
	sqliteRepo "github.com/sakif/interview-runner/internal/repository/sqlite"
	"github.com/sakif/interview-runner/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection. Start closes it on shutdown so
// pending WAL writes are flushed and the file lock is released.
type Server struct {
	router   *chi.Mux
	config   config.Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	registry *prometheus.Registry
}

// New creates a Server with every dependency wired.
//
// IMPORT ALIAS:
// repository/sqlite is imported as `sqliteRepo` to avoid confusion with the
// sqlite driver package.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: prometheus.NewRegistry(),
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler returns the root handler, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /healthz                                           → liveness + DB ping
//	GET  /metrics                                           → Prometheus scrape
//	POST /api/code-execution                                → run code (strategy decides path)
//	POST /api/ai-code-execution                             → simulate with the model
//	GET  /api/ai-code-execution/check                       → is a model key configured?
//	POST /api/sessions                                      → start an interview session
//	GET  /api/sessions/{sessionID}/submissions              → list answers      [session token]
//	GET  /api/sessions/{sessionID}/submissions/{questionID} → one answer        [session token]
//	PUT  /api/sessions/{sessionID}/submissions/{questionID} → save an answer    [session token]
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: assigns a unique ID to each request (logged by Logger)
//  2. RealIP: extracts the real client IP from proxy headers
//  3. Logger: logs each request with timing info
//  4. Recoverer: catches panics and returns 500 instead of crashing
func (s *Server) setupRoutes() error {
	cfg := s.config

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// === Metrics ===
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(s.registry)

	// === Execution ===
	registry := language.Default()
	nativeExec := native.New(cfg.Native, registry, recorder, s.logger)
	metrics.RegisterGauges(s.registry, nativeExec.Limiter())

	// A nil interface, not a typed nil *openai.Client, so Configured()
	// reports false when no key is set.
	var chat ai.ChatClient
	if cfg.OpenAIKey != "" {
		chat = ai.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	}
	simulator := ai.New(chat, cfg.AI, s.logger)

	execService := service.NewExecutionService(registry, nativeExec, simulator, cfg.Strategy, recorder, s.logger)
	executeHandler := handler.NewExecuteHandler(execService, s.logger)

	// === Sessions ===
	tokens, err := auth.NewTokenService(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	sessionService := service.NewSessionService(s.db, tokens, s.logger)
	submissionService := service.NewSubmissionService(s.db, s.db, s.logger)
	sessionHandler := handler.NewSessionHandler(sessionService, submissionService, tokens.TTL(), cfg.SecureCookie, s.logger)

	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	// === Routes ===
	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/code-execution", executeHandler.HandleExecute)
		r.Post("/ai-code-execution", executeHandler.HandleAIExecute)
		r.Get("/ai-code-execution/check", executeHandler.HandleAICheck)

		r.Post("/sessions", sessionHandler.HandleStart)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Use(auth.RequireSession(tokens, "sessionID"))
			r.Get("/submissions", sessionHandler.HandleListSubmissions)
			r.Get("/submissions/{questionID}", sessionHandler.HandleGetSubmission)
			r.Put("/submissions/{questionID}", sessionHandler.HandleSaveSubmission)
		})
	})

	s.logger.Info("execution configured",
		slog.String("strategy", cfg.Strategy.String()),
		slog.Duration("timeout", cfg.Native.Timeout),
		slog.Int("max_concurrent", cfg.Native.MaxConcurrent),
		slog.Int("max_queue", cfg.Native.MaxQueue),
		slog.Bool("ai_configured", simulator.Configured()),
		slog.Any("languages", registry.IDs()),
	)

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish; a running program may need the
//     whole execution timeout, so the grace period covers it
//  3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	// The write timeout must outlast a queued request plus a full run.
	execBudget := s.config.Native.QueueWait + s.config.Native.Timeout + s.config.Native.WaitDelay

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      execBudget + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), execBudget+5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
