// Package pagination pages the document, ledger and prompt listings.
package pagination

import (
	"errors"

	"github.com/JaimeStill/saldo/pkg/settings"
)

// Config bounds the page size a listing request may ask for.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// ConfigEnv names the environment variables that override Config fields.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
}

// Finalize applies environment overrides and defaults, then validates.
func (c *Config) Finalize(env *ConfigEnv) error {
	if env != nil {
		settings.EnvInt(&c.DefaultPageSize, env.DefaultPageSize)
		settings.EnvInt(&c.MaxPageSize, env.MaxPageSize)
	}

	settings.Default(&c.DefaultPageSize, 20)
	settings.Default(&c.MaxPageSize, 100)

	switch {
	case c.DefaultPageSize < 1:
		return errors.New("default_page_size must be positive")
	case c.MaxPageSize < 1:
		return errors.New("max_page_size must be positive")
	case c.DefaultPageSize > c.MaxPageSize:
		return errors.New("default_page_size cannot exceed max_page_size")
	}
	return nil
}

// Merge replaces the fields set in overlay.
func (c *Config) Merge(overlay *Config) {
	settings.Merge(&c.DefaultPageSize, overlay.DefaultPageSize)
	settings.Merge(&c.MaxPageSize, overlay.MaxPageSize)
}
