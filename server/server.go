// Package server provides HTTP server management and lifecycle handling for the pharmacie API.
// It includes middleware configuration, route mounting and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/giygas/pharmacie-api/config"
	"github.com/giygas/pharmacie-api/handlers"
	"github.com/giygas/pharmacie-api/logging"
	"github.com/giygas/pharmacie-api/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  chi.Router
	handler *handlers.HTTPHandlerImpl
	limiter *RateLimiter
	config  *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler *handlers.HTTPHandlerImpl) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:  router,
		handler: handler,
		limiter: NewRateLimiter(cfg.RateLimitRate, cfg.RateLimitCapacity),
		config:  cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.Logger()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(metrics.Metrics)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.limiter.Handler)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", promhttp.Handler())
	s.handler.RegisterRoutes(s.router)
}

// Handler returns the fully wired router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	defer s.limiter.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}
