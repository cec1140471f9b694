package main

import (
	"net/http"

	"github.com/JaimeStill/saldo/internal/api"
	"github.com/JaimeStill/saldo/internal/config"
	"github.com/JaimeStill/saldo/internal/infrastructure"
	"github.com/JaimeStill/saldo/pkg/handlers"
	"github.com/JaimeStill/saldo/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API: apiModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

// buildRouter serves the health endpoints outside the API module, so they skip its
// middleware and base path.
func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.Fallback("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Fallback("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		pending := infra.Lifecycle.NotReady()
		if len(pending) == 0 {
			if err := infra.Database.Check(r.Context()); err != nil {
				infra.Logger.Warn("readiness check failed", "error", err)
				pending = []string{"database"}
			}
		}
		if len(pending) > 0 {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "pending": pending})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return router
}
