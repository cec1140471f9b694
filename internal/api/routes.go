package api

import (
	"net/http"

	"github.com/JaimeStill/saldo/internal/config"
	"github.com/JaimeStill/saldo/pkg/routes"
)

const maxStorageListSize int32 = 1000

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) []routes.Group {
	groups := []routes.Group{
		domain.Documents.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Ledgers.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		newStorageHandler(runtime.Storage, runtime.Logger, maxStorageListSize).routes(),
	}

	routes.Register(mux, groups...)
	return groups
}
