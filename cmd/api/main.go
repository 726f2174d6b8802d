// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the Identra identity server.
//
// Startup order: config, logger, migrations, Postgres, Redis, token service,
// domain wiring, HTTP server. Any failure before the listener starts is fatal.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/identra/internal/api"
	"github.com/taibuivan/identra/internal/identity"
	"github.com/taibuivan/identra/internal/platform/config"
	"github.com/taibuivan/identra/internal/platform/constants"
	"github.com/taibuivan/identra/internal/platform/migration"
	"github.com/taibuivan/identra/internal/platform/postgres"
	"github.com/taibuivan/identra/internal/platform/redis"
	"github.com/taibuivan/identra/internal/platform/sec"
)

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting",
		slog.String("service", constants.AppName),
		slog.String("environment", cfg.Environment),
	)

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
		logger.Error("migration_failed", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := postgres.NewPool(rootCtx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("postgres_connect_failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(rootCtx, cfg.RedisURL, logger)
	if err != nil {
		logger.Error("redis_connect_failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	tokenService, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer, cfg.AccessTokenTTL())
	if err != nil {
		logger.Error("token_service_init_failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Domain wiring.
	userRepository := identity.NewPostgresUserRepository(pool)
	refreshTokens := identity.NewRefreshTokenManager(userRepository)
	loginThrottle := identity.NewRedisLoginThrottle(redisClient)
	identityService := identity.NewService(userRepository, refreshTokens, tokenService, loginThrottle, logger)
	identityHandler := identity.NewHandler(identityService, logger)

	server := api.NewServer(rootCtx, api.Dependencies{
		Config:       cfg,
		Logger:       logger,
		Pool:         pool,
		Redis:        redisClient,
		TokenService: tokenService,
		Identity:     identityHandler,
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_failed", slog.Any("error", err))
			os.Exit(1)
		}
	case <-rootCtx.Done():
		// Use a fresh context: rootCtx is already cancelled by the signal.
		if err := server.Shutdown(context.Background(), constants.ShutdownTimeout); err != nil {
			logger.Error("shutdown_failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	logger.Info("stopped")
}

// newLogger builds the process-wide JSON logger. Debug mode lowers the level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug || cfg.IsDevelopment() {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("service", constants.AppName))
}
