// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/identra/internal/platform/constants"
	"github.com/taibuivan/identra/internal/platform/postgres"
	"github.com/taibuivan/identra/internal/platform/redis"
	"github.com/taibuivan/identra/internal/platform/respond"
)

// # Health Probes

// healthHandler answers liveness and readiness probes.
//
// Liveness says only "the process is up". Readiness additionally verifies the
// backing stores, so an orchestrator stops routing traffic when Postgres or
// Redis is unreachable.
type healthHandler struct {
	pool  *pgxpool.Pool
	redis *goredis.Client
}

func newHealthHandler(pool *pgxpool.Pool, redisClient *goredis.Client) *healthHandler {
	return &healthHandler{pool: pool, redis: redisClient}
}

// live handles GET /health.
func (h *healthHandler) live(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{
		"status":  "ok",
		"service": constants.AppName,
	})
}

// ready handles GET /ready.
func (h *healthHandler) ready(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	checks := map[string]string{
		"postgres": "ok",
		"redis":    "ok",
	}
	healthy := true

	if err := postgres.Ping(ctx, h.pool); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	}
	if err := redis.Ping(ctx, h.redis); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	if !healthy {
		respond.JSON(writer, http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
			"checks": checks,
		})
		return
	}

	respond.OK(writer, map[string]any{
		"status": "ready",
		"checks": checks,
	})
}
