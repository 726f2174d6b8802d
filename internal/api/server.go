// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package api assembles the HTTP surface of the Identra server.
//
// # Architecture
//
// It owns the router, the middleware chain, and the http.Server lifecycle.
// Domain handlers are mounted here but defined next to their domains.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/identra/internal/identity"
	"github.com/taibuivan/identra/internal/platform/config"
	"github.com/taibuivan/identra/internal/platform/constants"
	"github.com/taibuivan/identra/internal/platform/middleware"
	"github.com/taibuivan/identra/internal/platform/sec"
)

// Server bundles the HTTP server with its dependencies for lifecycle control.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// Dependencies carries everything the router needs, wired in main.
type Dependencies struct {
	Config       *config.Config
	Logger       *slog.Logger
	Pool         *pgxpool.Pool
	Redis        *redis.Client
	TokenService *sec.TokenService
	Identity     *identity.Handler
}

// NewServer builds the router, applies the middleware chain, and returns a
// ready-to-start server.
func NewServer(ctx context.Context, deps Dependencies) *Server {
	router := chi.NewRouter()

	// Middleware order matters: recovery outermost, then request identity,
	// logging, rate limiting, CORS, and the global timeout.
	router.Use(middleware.PanicRecovery(deps.Logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(deps.Logger))
	router.Use(middleware.RateLimit(ctx))
	router.Use(middleware.CORS(deps.Config))

	// Liveness and readiness probes sit outside /api and outside auth.
	health := newHealthHandler(deps.Pool, deps.Redis)
	router.Get("/health", health.live)
	router.Get("/ready", health.ready)

	router.Route("/api/v1", func(api chi.Router) {
		// Claims extraction is global; enforcement happens per route group.
		api.Use(middleware.Authenticate(deps.TokenService))

		api.Mount("/auth", deps.Identity.AuthRoutes())
		api.Mount("/users", deps.Identity.UserRoutes())
	})

	httpServer := &http.Server{
		Addr:              ":" + deps.Config.ServerPort,
		Handler:           http.TimeoutHandler(router, constants.GlobalRequestTimeout, `{"error":"request timed out"}`),
		ReadTimeout:       constants.DefaultReadTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
	}

	return &Server{
		httpServer: httpServer,
		logger:     deps.Logger,
	}
}

// Start begins serving. It blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server_listening", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests within the given timeout.
func (s *Server) Shutdown(ctx context.Context, timeout time.Duration) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info("server_shutting_down")
	return s.httpServer.Shutdown(shutdownCtx)
}
