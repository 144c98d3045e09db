// Package server provides the HTTP API for medirag.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/medioracle/medirag/internal/config"
	"github.com/medioracle/medirag/internal/rag"
	"github.com/medioracle/medirag/internal/safety"
)

const (
	// ServiceName and ServiceVersion identify the API in the root and
	// health endpoints and in the CLI version output.
	ServiceName    = "medirag - Medical RAG Engine"
	ServiceVersion = "1.0.0"
)

// Server is the HTTP server for the medirag API.
type Server struct {
	engine *rag.Engine
	config *config.ServerConfig
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(engine *rag.Engine, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		engine: engine,
		config: cfg,
		logger: logger,
	}
}

// Handler builds the full router including middleware. Every response
// carries the X-Medical-Disclaimer header.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(disclaimerHeader)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/api/v1/ingest", s.handleIngest)
	r.Post("/api/v1/query", s.handleQuery)
	r.Post("/api/v1/diagnose", s.handleDiagnose)
	r.Post("/api/v1/analyze-symptoms", s.handleAnalyzeSymptoms)
	r.Get("/api/v1/status", s.handleStatus)
	r.Delete("/api/v1/index", s.handleClearIndex)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// disclaimerHeader marks every response as educational, mirroring the
// upstream service contract.
func disclaimerHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Medical-Disclaimer", safety.DisclaimerHeaderValue)
		next.ServeHTTP(w, r)
	})
}
