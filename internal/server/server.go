// Package server provides the HTTP server and routing for the treasury
// engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/allocation"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/history"
	"github.com/sunnysolana2003-crypto/ShadowFund-sub001/internal/modules/rebalancing"
)

// Config holds server configuration
type Config struct {
	Port        int
	Rebalancing *rebalancing.Service
	Engine      *allocation.Engine
	History     *history.Repository // may be nil
	Log         zerolog.Logger
}

// Server represents the HTTP server
type Server struct {
	router      *chi.Mux
	server      *http.Server
	rebalancing *rebalancing.Service
	engine      *allocation.Engine
	history     *history.Repository
	log         zerolog.Logger
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		rebalancing: cfg.Rebalancing,
		engine:      cfg.Engine,
		history:     cfg.History,
		log:         cfg.Log.With().Str("component", "server").Logger(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/rebalance", s.handleRebalance)
		r.Get("/stats/{wallet}", s.handleStats)
		r.Get("/allocation/preview", s.handleAllocationPreview)
		r.Get("/history", s.handleHistory)
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins serving. Blocks until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info().Msg("HTTP server stopping")
	return s.server.Shutdown(ctx)
}

// recoverer turns an orchestration panic into an opaque internal error.
// Nothing partial is reported: the run's own aggregation already happened
// or the request never got far enough to matter.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("request panicked")
				s.writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
