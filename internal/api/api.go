// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/saldo/internal/config"
	"github.com/JaimeStill/saldo/internal/infrastructure"
	"github.com/JaimeStill/saldo/pkg/middleware"
	"github.com/JaimeStill/saldo/pkg/module"
	"github.com/JaimeStill/saldo/pkg/openapi"
	"github.com/JaimeStill/saldo/pkg/routes"
)

// NewModule creates the API module with all domain handlers and middleware.
// The module also serves the generated OpenAPI document at /openapi.json.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	groups := registerRoutes(mux, domain, cfg, runtime)

	specBytes, err := buildSpec(cfg, groups)
	if err != nil {
		return nil, fmt.Errorf("openapi spec: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.RequestID())
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))
	m.Use(middleware.Recover(runtime.Infrastructure.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))

	return m, nil
}

func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version, cfg.API.BasePath)
	routes.Describe(spec, groups...)
	return spec.JSON()
}
