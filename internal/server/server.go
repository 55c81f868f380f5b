// Package server provides the candidates REST API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonathan/candidate-tracker/internal/config"
	"github.com/jonathan/candidate-tracker/internal/db"
	"github.com/jonathan/candidate-tracker/internal/server/middleware"
	"github.com/jonathan/candidate-tracker/internal/server/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	repo        db.Repository
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	logger      *slog.Logger
	now         func() time.Time
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
	// JWT guards write routes when set.
	JWT       *config.JWTConfig
	RateLimit *ratelimit.Config
	Logger    *slog.Logger
	// AutoMigrate applies the schema when the repository is opened.
	AutoMigrate bool
}

// New opens the repository named by cfg.DatabaseURL and creates a server
// for it.
func New(ctx context.Context, cfg Config) (*Server, error) {
	repo, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			_ = repo.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	return NewWithRepository(repo, cfg), nil
}

// NewWithRepository creates a server backed by repo.
func NewWithRepository(repo db.Repository, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rl := cfg.RateLimit
	if rl == nil {
		rl = ratelimit.LoadConfig()
	}

	s := &Server{
		repo:        repo,
		rateLimiter: ratelimit.NewLimiter(rl),
		logger:      logger,
		now:         time.Now,
	}
	if cfg.JWT != nil {
		s.jwtService = NewJWTService(cfg.JWT)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/candidates", s.handleListCandidates)
	mux.HandleFunc("GET /api/candidates/{memberId}", s.handleGetCandidate)
	mux.Handle("POST /api/candidates", s.requireAuth(http.HandlerFunc(s.handleUpsertCandidate)))
	mux.Handle("DELETE /api/candidates/{memberId}", s.requireAuth(http.HandlerFunc(s.handleDeleteCandidate)))
	mux.HandleFunc("/", s.handleNotFound)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// requireAuth guards next with the JWT middleware when JWT is configured.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	if s.jwtService == nil {
		return next
	}
	return middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(next)
}

// Start serves until ctx is cancelled, then shuts down gracefully. The
// caller releases resources with Close.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close releases the rate limiter and the repository.
func (s *Server) Close() error {
	s.rateLimiter.Stop()
	return s.repo.Close()
}

// handleHealth reports server and database status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, database, code := "OK", "connected", http.StatusOK
	if err := s.repo.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", "error", err)
		status, database, code = "DEGRADED", "disconnected", http.StatusServiceUnavailable
	}
	s.jsonResponse(w, code, map[string]string{
		"status":    status,
		"database":  database,
		"message":   "Candidate tracker API is running",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, http.StatusNotFound, fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path))
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an {error, message} body with the status text as the
// error.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, ErrorBody{Error: http.StatusText(status), Message: message})
}
