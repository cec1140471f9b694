package config

import (
	"fmt"

	"github.com/JaimeStill/saldo/pkg/formatting"
	"github.com/JaimeStill/saldo/pkg/middleware"
	"github.com/JaimeStill/saldo/pkg/openapi"
	"github.com/JaimeStill/saldo/pkg/pagination"
	"github.com/JaimeStill/saldo/pkg/settings"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "SALDO_CORS_ENABLED",
	Origins:          "SALDO_CORS_ORIGINS",
	AllowedMethods:   "SALDO_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "SALDO_CORS_ALLOWED_HEADERS",
	AllowCredentials: "SALDO_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "SALDO_CORS_MAX_AGE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "SALDO_OPENAPI_TITLE",
	Description: "SALDO_OPENAPI_DESCRIPTION",
	Server:      "SALDO_OPENAPI_SERVER",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "SALDO_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "SALDO_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, pagination, and OpenAPI settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes falls back to 50 MiB for a config that skipped Finalize.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 50 << 20
	}
	return size
}

// Finalize applies defaults and SALDO_API_* overrides, then finalizes the
// nested CORS, pagination and OpenAPI configs.
func (c *APIConfig) Finalize() error {
	settings.Env(&c.BasePath, "SALDO_API_BASE_PATH")
	settings.Env(&c.MaxUploadSize, "SALDO_API_MAX_UPLOAD_SIZE")
	settings.Default(&c.BasePath, "/api")
	settings.Default(&c.MaxUploadSize, "50MB")

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("max_upload_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

func (c *APIConfig) Merge(overlay *APIConfig) {
	settings.Merge(&c.BasePath, overlay.BasePath)
	settings.Merge(&c.MaxUploadSize, overlay.MaxUploadSize)
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}
