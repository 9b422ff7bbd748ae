// Package server provides the HTTP REST API for the career data quality
// service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/careerbase/internal/bulkops"
	"github.com/jonathan/careerbase/internal/config"
	"github.com/jonathan/careerbase/internal/dedupe"
	"github.com/jonathan/careerbase/internal/logging"
	"github.com/jonathan/careerbase/internal/metrics"
	"github.com/jonathan/careerbase/internal/similarity"
	"github.com/jonathan/careerbase/internal/store"
)

// Config holds server configuration and collaborators.
type Config struct {
	Port     int
	Records  store.RecordStore
	Chunks   store.ChunkStore
	Scorer   *similarity.Scorer
	Detector *dedupe.Detector
	Engine   *bulkops.Engine
	Auth     *config.AuthConfig
	Logger   logging.Logger
	Metrics  *metrics.Metrics
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	records    store.RecordStore
	chunks     store.ChunkStore
	scorer     *similarity.Scorer
	detector   *dedupe.Detector
	engine     *bulkops.Engine
	auth       *config.AuthConfig
	jwtService *JWTService
	logger     logging.Logger
}

// New creates a new server instance.
func New(cfg Config) (*Server, error) {
	if cfg.Auth == nil {
		return nil, fmt.Errorf("auth config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Server{
		records:    cfg.Records,
		chunks:     cfg.Chunks,
		scorer:     cfg.Scorer,
		detector:   cfg.Detector,
		engine:     cfg.Engine,
		auth:       cfg.Auth,
		jwtService: NewJWTService(cfg.Auth),
		logger:     logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/token", s.handleToken)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	// Everything below requires a bearer token.
	mux.Handle("GET /records", s.withAuth(s.handleListRecords))
	mux.Handle("GET /records/{id}", s.withAuth(s.handleGetRecord))
	mux.Handle("POST /analysis/similarity", s.withAuth(s.handleSimilarity))
	mux.Handle("POST /analysis/duplicates", s.withAuth(s.handleDuplicateScan))
	mux.Handle("POST /operations/preview", s.withAuth(s.handlePreview))
	mux.Handle("POST /operations", s.withAuth(s.handleExecute))
	mux.Handle("GET /operations/{id}", s.withAuth(s.handleOperationStatus))
	mux.Handle("POST /operations/{id}/cancel", s.withAuth(s.handleCancel))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for bulk executions
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", logging.F("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			logging.F("method", r.Method),
			logging.F("path", r.URL.Path),
			logging.F("remote", r.RemoteAddr),
			logging.F("duration_ms", time.Since(start).Milliseconds()))
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", logging.Err(err))
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
