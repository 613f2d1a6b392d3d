// Package web serves the server-rendered deals dashboard.
//
// The filter/sort/page state lives entirely in the URL query string: every toolbar
// change is a GET of "/" with the new parameters, pagination and clearing are plain
// links, and creation posts back and redirects to the unchanged list URL.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/dealbrief/internal/config"
	"github.com/hyperjump/dealbrief/internal/dashboard"
	"github.com/hyperjump/dealbrief/internal/metrics"
)

//go:embed templates/*.html static/*
var assets embed.FS

// Server is the HTTP server for the web dashboard.
type Server struct {
	api     dashboard.DealsAPI
	config  *config.DashboardConfig
	logger  *zap.Logger
	metrics *metrics.Metrics
	tmpl    *template.Template
	server  *http.Server
}

// NewServer creates a dashboard server backed by api. m may be nil.
func NewServer(api dashboard.DealsAPI, cfg *config.DashboardConfig, logger *zap.Logger, m *metrics.Metrics) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{
		api:     api,
		config:  cfg,
		logger:  logger,
		metrics: m,
		tmpl:    tmpl,
	}, nil
}

// Handler returns the dashboard routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(s.metrics.Middleware)

	static, _ := fs.Sub(assets, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", s.handleList)
	r.Get("/deals/new", s.handleNewDeal)
	r.Post("/deals", s.handleCreateDeal)
	r.Get("/deals/{id}", s.handleDetail)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.NotFound(s.handleNotFound)
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
	s.logger.Info("Starting dashboard", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
