package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"creditwatch/app"
	"creditwatch/internal"
	"creditwatch/internal/errors"
	"creditwatch/ports"
)

// Server exposes the monitoring services over a thin JSON API
type Server struct {
	router     *chi.Mux
	drift      *app.DriftService
	fairness   *app.FairnessService
	retraining *app.RetrainingService
	provider   ports.BatchProvider
	reports    ports.DriftReportStore
	logger     *internal.Logger
}

// NewServer creates the API server and wires its routes
func NewServer(
	drift *app.DriftService,
	fairness *app.FairnessService,
	retraining *app.RetrainingService,
	provider ports.BatchProvider,
	reports ports.DriftReportStore,
	logger *internal.Logger,
) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:     chi.NewRouter(),
		drift:      drift,
		fairness:   fairness,
		retraining: retraining,
		provider:   provider,
		reports:    reports,
		logger:     logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Router returns the configured HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/monitoring/drift", s.handleLatestDrift)
		r.Get("/monitoring/drift/history", s.handleDriftHistory)
		r.Post("/monitoring/drift/check", s.handleDriftCheck)
		r.Post("/analysis/fairness", s.handleFairness)
		r.Get("/retraining/decision", s.handleRetrainingDecision)
	})
}

// writeJSON encodes v as the response body
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response: %v", err)
	}
}

// errorResponse is the error body shape
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps application error codes to HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidInput, errors.CodeConfigInvalid:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeExternalService:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}

	s.writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}
