// Package api exposes the prioritization engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"prio/internal/logging"
	"prio/internal/policy"
	"prio/internal/storage"
)

// PolicyProvider resolves named weight presets for incoming requests.
type PolicyProvider interface {
	ListActive() ([]policy.Policy, error)
	GetByName(name string) (*policy.Policy, error)
	GetDefault() (*policy.Policy, error)
}

// RunRecorder persists prioritization runs and serves run history.
type RunRecorder interface {
	RecordRun(run *storage.Run) error
	ListRuns(repoID int64, limit int) ([]storage.Run, error)
	GetRun(id string) (*storage.Run, error)
}

// Options configures optional server behavior.
type Options struct {
	// ComparatorSeed seeds the random baseline when a request does not
	// carry its own seed.
	ComparatorSeed int64
	// TokenHash enables bearer-token auth when non-empty.
	TokenHash string
}

// Server represents the HTTP API server
type Server struct {
	router   *http.ServeMux
	server   *http.Server
	addr     string
	logger   *logging.Logger
	policies PolicyProvider
	runs     RunRecorder
	db       *storage.DB
	opts     Options
	started  time.Time
}

// NewServer creates a new HTTP server instance. runs and db may be nil
// when persistence is disabled; the prioritize and compare endpoints
// keep working without them.
func NewServer(addr string, policies PolicyProvider, runs RunRecorder, db *storage.DB, opts Options, logger *logging.Logger) *Server {
	s := &Server{
		addr:     addr,
		logger:   logger,
		policies: policies,
		runs:     runs,
		db:       db,
		opts:     opts,
		router:   http.NewServeMux(),
		started:  time.Now(),
	}

	s.registerRoutes()

	handler := s.applyMiddleware(s.router)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", map[string]interface{}{
		"addr": s.addr,
	})

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", nil)

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully", nil)
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	if s.opts.TokenHash != "" {
		handler = AuthMiddleware(s.opts.TokenHash)(handler)
	}
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = CORSMiddleware()(handler)
	return handler
}
