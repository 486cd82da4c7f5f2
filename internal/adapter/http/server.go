// Package http exposes the engine's operational and read-only API endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

// AssessmentProvider serves the latest computed outputs to API handlers.
type AssessmentProvider interface {
	CheckReadiness(ctx context.Context) error
	CurrentAssessment() domain.Assessment
	LatestBatch() (domain.BatchResult, bool)
	LatestNowcast() (domain.NowcastResult, bool)
}

// Server exposes health, readiness, metrics, and risk API endpoints.
type Server struct {
	httpServer *http.Server
	provider   AssessmentProvider
	logger     *slog.Logger
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(addr string, provider AssessmentProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider: provider,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/assessment", s.handleAssessment)
	mux.HandleFunc("GET /api/v1/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/v1/nowcast", s.handleNowcast)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.provider.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleAssessment always returns 200: a degraded assessment is still a
// structurally valid answer for callers.
func (s *Server) handleAssessment(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.provider.CurrentAssessment())
}

func (s *Server) handleAnalytics(w http.ResponseWriter, _ *http.Request) {
	batch, ok := s.provider.LatestBatch()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no analytics batch has completed yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleNowcast(w http.ResponseWriter, _ *http.Request) {
	result, ok := s.provider.LatestNowcast()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no nowcast run has completed yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
