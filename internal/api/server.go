// Package api provides the reference Deals API that the dashboards consume.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/dealbrief/internal/briefer"
	"github.com/hyperjump/dealbrief/internal/config"
	"github.com/hyperjump/dealbrief/internal/metrics"
	"github.com/hyperjump/dealbrief/internal/search"
	"github.com/hyperjump/dealbrief/internal/storage"
)

// Server is the HTTP server for the Deals API.
type Server struct {
	storage    storage.Storage
	index      search.Index
	briefer    *briefer.Service
	config     *config.ServerConfig
	storageCfg *config.StorageConfig
	logger     *zap.Logger
	metrics    *metrics.Metrics
	server     *http.Server
}

// NewServer creates a server with the given dependencies. storageCfg and m may be nil.
func NewServer(
	store storage.Storage,
	index search.Index,
	svc *briefer.Service,
	cfg *config.ServerConfig,
	storageCfg *config.StorageConfig,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		storage:    store,
		index:      index,
		briefer:    svc,
		config:     cfg,
		storageCfg: storageCfg,
		logger:     logger,
		metrics:    m,
	}
}

// Handler returns the API routes. Both slash and no-slash forms are served.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(s.metrics.Middleware)

	r.Route("/api/deals", func(r chi.Router) {
		r.Get("/", s.handleListDeals)
		r.Post("/", s.handleCreateDeal)
		r.Get("/{id}", s.handleGetDeal)
		r.Get("/{id}/", s.handleGetDeal)
	})
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/status/", s.handleStatus)
	r.Get("/health", s.handleHealth)
	r.Get("/health/", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusNotFound, msgNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusMethodNotAllowed, `Method "`+r.Method+`" not allowed.`)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
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
