package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/fooddealsberlin/backend/api/responses"
	"github.com/fooddealsberlin/backend/pkg/config"
	"github.com/fooddealsberlin/backend/pkg/db"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/logger"
	"github.com/fooddealsberlin/backend/pkg/redis"
	"github.com/fooddealsberlin/backend/pkg/storage/gcs"
)

const readinessTimeout = 5 * time.Second

// HealthLive answers as soon as the process serves HTTP.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"status": "ok",
			"env":    cfg.App.Env,
		})
	}
}

// HealthReady checks the dependencies a request actually needs. Optional
// dependencies that were never configured are reported as skipped rather
// than failing readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		failed := false

		check := func(name string, pinger interface {
			Ping(context.Context) error
		}) {
			if pinger == nil {
				checks[name] = "skipped"
				return
			}
			if err := pinger.Ping(ctx); err != nil {
				checks[name] = "down"
				failed = true
				if logg != nil {
					logg.Error(ctx, "health."+name+"_unreachable", err)
				}
				return
			}
			checks[name] = "ok"
		}

		check("db", dbP)
		check("redis", redisP)
		check("gcs", gcsP)

		if failed {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency not ready").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"status": "ready",
			"env":    cfg.App.Env,
			"checks": checks,
		})
	}
}
