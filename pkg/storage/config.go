package storage

import (
	"errors"

	"github.com/JaimeStill/saldo/pkg/settings"
)

// Config holds the Azure Blob Storage container that keeps scans and
// ledger exports.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	MaxListSize      int32  `toml:"max_list_size"`
}

// Env names the environment variables that override Config fields.
type Env struct {
	ContainerName    string
	ConnectionString string
	MaxListSize      string
}

// Finalize applies environment overrides and defaults, then validates.
// MaxListSize falls back to 50 when unset or negative and is capped at
// MaxListCap.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		settings.Env(&c.ContainerName, env.ContainerName)
		settings.Env(&c.ConnectionString, env.ConnectionString)
		settings.EnvInt(&c.MaxListSize, env.MaxListSize)
	}

	settings.Default(&c.ContainerName, "saldo")
	if c.MaxListSize <= 0 {
		c.MaxListSize = 50
	}
	c.MaxListSize = min(c.MaxListSize, MaxListCap)

	if c.ConnectionString == "" {
		return errors.New("connection_string required")
	}
	return nil
}

// Merge replaces the fields set in overlay.
func (c *Config) Merge(overlay *Config) {
	settings.Merge(&c.ContainerName, overlay.ContainerName)
	settings.Merge(&c.ConnectionString, overlay.ConnectionString)
	settings.Merge(&c.MaxListSize, overlay.MaxListSize)
}
