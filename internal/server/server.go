// Package server provides the HTTP API for the docs site.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dedkola/tk-docs-template/internal/config"
	"github.com/dedkola/tk-docs-template/internal/metrics"
	"github.com/dedkola/tk-docs-template/internal/search"
	"github.com/dedkola/tk-docs-template/internal/site"
)

// Server is the HTTP server for the docs API.
type Server struct {
	site     *site.Site
	engine   *search.Engine
	sessions *SessionManager
	config   *config.Config
	metrics  *metrics.Metrics
	logger   *zap.Logger
	server   *http.Server
	version  string
}

// NewServer creates a server with the given dependencies. m may be nil.
func NewServer(
	st *site.Site,
	engine *search.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		site:   st,
		engine: engine,
		sessions: NewSessionManager(
			cfg.Navigation.SessionTTL,
			cfg.Navigation.MaxSessions,
			cfg.Navigation.Debounce,
			logger,
			m,
		),
		config:  cfg,
		metrics: m,
		logger:  logger,
		version: "dev",
	}
}

// SetVersion sets the version reported by /api/v1/status.
func (s *Server) SetVersion(v string) {
	s.version = v
}

// Sessions returns the navigation session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.instrument)
	}
	if s.config.Server.SecurityHeadersOrDefault() {
		r.Use(securityHeaders)
	}
	if t := s.config.Server.RequestTimeout; t > 0 {
		r.Use(middleware.Timeout(t))
	}
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Get("/sitemap.xml", s.handleSitemap)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/categories", s.handleCategories)
		r.Get("/documents", s.handleListDocuments)
		r.Get("/documents/*", s.handleGetDocument)
		r.Get("/search", s.handleSearch)
		r.Get("/tags", s.handleTags)
		r.Post("/reload", s.handleReload)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/query", s.handleSessionQuery)
			r.Put("/tag", s.handleSessionTag)
			r.Put("/location", s.handleSessionLocation)
			r.Put("/panel", s.handleSessionPanel)
		})
	})
	return r
}

// Start starts the HTTP server and blocks until it stops. Expired navigation
// sessions are swept until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	go s.sessions.Run(ctx)

	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server and drops all sessions.
func (s *Server) Stop(ctx context.Context) error {
	s.sessions.Close()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
