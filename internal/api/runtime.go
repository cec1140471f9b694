package api

import (
	"github.com/JaimeStill/saldo/internal/config"
	"github.com/JaimeStill/saldo/internal/infrastructure"
	"github.com/JaimeStill/saldo/internal/oracle"
	"github.com/JaimeStill/saldo/internal/reconcile"
	"github.com/JaimeStill/saldo/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination   pagination.Config
	OracleConfig *oracle.Config
	Engine       reconcile.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Oracle:    infra.Oracle,
		},
		Pagination:   cfg.API.Pagination,
		OracleConfig: &cfg.Oracle,
		Engine:       cfg.Engine.Reconcile(),
	}
}
