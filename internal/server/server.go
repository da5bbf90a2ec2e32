// Package server provides the HTTP server for the cluster gateway.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/config"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/handler"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/health"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/middleware"
	"github.com/Swasthikat/concurrent-consistent-hash-kvstore/internal/service"
)

// Server represents the HTTP server.
type Server struct {
	router      *mux.Router
	httpServer  *http.Server
	handlers    *handler.Handlers
	healthCheck *health.HealthCheck
	logger      *zap.Logger
	cfg         *config.Config
}

// NewServer creates a new HTTP server around the router service.
func NewServer(cfg *config.Config, routerSvc *service.RouterService, logger *zap.Logger) *Server {
	router := mux.NewRouter()
	handlers := handler.NewHandlers(routerSvc, logger)
	healthCheck := health.NewHealthCheck(routerSvc, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		router:      router,
		httpServer:  httpServer,
		handlers:    handlers,
		healthCheck: healthCheck,
		logger:      logger,
		cfg:         cfg,
	}
}

// SetupRoutes configures all HTTP routes.
func (s *Server) SetupRoutes() {
	middlewareChain := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID,
		middleware.Logging(s.logger),
	}

	if s.cfg.RateLimiter.Enabled {
		rateLimiter := middleware.NewRateLimiter(
			s.cfg.RateLimiter.RequestsPerSecond,
			s.cfg.RateLimiter.BurstSize,
			s.logger,
		)
		middlewareChain = append(middlewareChain, rateLimiter.Limit)
	}

	chain := middleware.Chain(middlewareChain...)
	s.router.Use(func(next http.Handler) http.Handler {
		return chain(next)
	})

	// Health check endpoints
	s.router.HandleFunc("/health", s.healthCheck.LivenessHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.healthCheck.ReadinessHandler).Methods(http.MethodGet)

	if s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
	}

	// API v1 routes
	v1 := s.router.PathPrefix("/v1").Subrouter()

	// Key operations
	v1.HandleFunc("/keys/{key}", s.handlers.PutKey).Methods(http.MethodPut)
	v1.HandleFunc("/keys/{key}", s.handlers.GetKey).Methods(http.MethodGet)
	v1.HandleFunc("/keys/{key}", s.handlers.DeleteKey).Methods(http.MethodDelete)

	// Topology management
	v1.HandleFunc("/shards", s.handlers.AddShard).Methods(http.MethodPost)
	v1.HandleFunc("/shards", s.handlers.ListShards).Methods(http.MethodGet)
	v1.HandleFunc("/shards/{shard_id}", s.handlers.RemoveShard).Methods(http.MethodDelete)
	v1.HandleFunc("/ring/virtual-node", s.handlers.RemoveVirtualNode).Methods(http.MethodDelete)

	// Diagnostics
	v1.HandleFunc("/distribution", s.handlers.Distribution).Methods(http.MethodGet)
}

// Router exposes the mux router, mainly for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start begins serving HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
