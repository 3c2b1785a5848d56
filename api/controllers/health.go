package controllers

import (
	"net/http"

	"github.com/brightbasket/storefront-backend/api/responses"
	"github.com/brightbasket/storefront-backend/pkg/config"
	"github.com/brightbasket/storefront-backend/pkg/db"
	"github.com/brightbasket/storefront-backend/pkg/logger"
	"github.com/brightbasket/storefront-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports degraded with a 503 when any backing store is
// unreachable, so load balancers can pull the instance from rotation.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		checks := map[string]string{
			"db":    "ok",
			"redis": "ok",
		}
		healthy := true

		if err := dbP.Ping(ctx); err != nil {
			logg.Error(ctx, "readiness db ping failed", err)
			checks["db"] = "unreachable"
			healthy = false
		}
		if err := redisP.Ping(ctx); err != nil {
			logg.Error(ctx, "readiness redis ping failed", err)
			checks["redis"] = "unreachable"
			healthy = false
		}

		if !healthy {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"checks": checks,
			})
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}
