// Package server provides the read-only HTTP API over stored scan runs.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/tadoru/internal/config"
	"github.com/hyperjump/tadoru/internal/storage"
)

// Server is the HTTP server for the tadoru API.
type Server struct {
	store  *storage.Store
	config *config.ServerConfig
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server over the given store.
func NewServer(store *storage.Store, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		store:  store,
		config: cfg,
		logger: logger,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/api/v1/runs", s.handleListRuns)
	r.Get("/api/v1/runs/{id}", s.handleGetRun)
	r.Get("/api/v1/runs/{id}/groups", s.handleListGroups)
	r.Get("/api/v1/runs/{id}/rows", s.handleQueryRows)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
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
