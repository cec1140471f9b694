package openapi

import (
	"cmp"

	"github.com/JaimeStill/saldo/pkg/settings"
)

const (
	defaultTitle       = "Saldo API"
	defaultDescription = "Pallet exchange reconciliation for scanned freight documents."
)

// Config holds the metadata published in the generated API document.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	// Server replaces the base path as the published server URL, for
	// deployments behind a proxy that rewrites paths.
	Server string `toml:"server"`
}

// ConfigEnv names the environment variables that override Config fields.
type ConfigEnv struct {
	Title       string
	Description string
	Server      string
}

// Finalize applies environment overrides, then fills defaults.
func (c *Config) Finalize(env *ConfigEnv) error {
	if env != nil {
		settings.Env(&c.Title, env.Title)
		settings.Env(&c.Description, env.Description)
		settings.Env(&c.Server, env.Server)
	}
	c.Title = cmp.Or(c.Title, defaultTitle)
	c.Description = cmp.Or(c.Description, defaultDescription)
	return nil
}

// Merge overwrites fields that are set in overlay.
func (c *Config) Merge(overlay *Config) {
	c.Title = cmp.Or(overlay.Title, c.Title)
	c.Description = cmp.Or(overlay.Description, c.Description)
	c.Server = cmp.Or(overlay.Server, c.Server)
}
