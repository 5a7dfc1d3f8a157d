package controllers

import (
	"context"
	"net/http"

	"github.com/RafaGarcia5/grocerease-api/api/responses"
	"github.com/RafaGarcia5/grocerease-api/pkg/config"
	pkgerrors "github.com/RafaGarcia5/grocerease-api/pkg/errors"
	"github.com/RafaGarcia5/grocerease-api/pkg/logger"
)

const envHeader = "X-GrocerEase-Env"

type readinessPinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness after checking the database and redis.
func HealthReady(cfg *config.Config, db, cache readinessPinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
