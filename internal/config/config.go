package config

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/saldo/internal/oracle"
	"github.com/JaimeStill/saldo/pkg/database"
	"github.com/JaimeStill/saldo/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvSaldoEnv             = "SALDO_ENV"
	EnvSaldoShutdownTimeout = "SALDO_SHUTDOWN_TIMEOUT"
	EnvSaldoVersion         = "SALDO_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "SALDO_DB_HOST",
	Port:            "SALDO_DB_PORT",
	Name:            "SALDO_DB_NAME",
	User:            "SALDO_DB_USER",
	Password:        "SALDO_DB_PASSWORD",
	SSLMode:         "SALDO_DB_SSL_MODE",
	MaxOpenConns:    "SALDO_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SALDO_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SALDO_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SALDO_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "SALDO_STORAGE_CONTAINER_NAME",
	ConnectionString: "SALDO_STORAGE_CONNECTION_STRING",
}

var oracleEnv = &oracle.Env{
	Provider:       "SALDO_ORACLE_PROVIDER",
	Workers:        "SALDO_ORACLE_WORKERS",
	MaxAttempts:    "SALDO_ORACLE_MAX_ATTEMPTS",
	InitialBackoff: "SALDO_ORACLE_INITIAL_BACKOFF",
	MaxBackoff:     "SALDO_ORACLE_MAX_BACKOFF",
	GenAIBackend:   "SALDO_GENAI_BACKEND",
	GenAIAPIKey:    "SALDO_GENAI_API_KEY",
	GenAIProject:   "SALDO_GENAI_PROJECT",
	GenAILocation:  "SALDO_GENAI_LOCATION",
	GenAIModel:     "SALDO_GENAI_MODEL",
}

// Config is the root configuration for the Saldo service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Agent           AgentConfig     `toml:"agent"`
	Oracle          oracle.Config   `toml:"oracle"`
	Engine          EngineConfig    `toml:"engine"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the SALDO_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvSaldoEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Oracle.Merge(&overlay.Oracle)
	c.Engine.Merge(&overlay.Engine)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Oracle.Finalize(oracleEnv); err != nil {
		return fmt.Errorf("oracle: %w", err)
	}
	if c.Oracle.Provider == oracle.ProviderAgent {
		if err := c.Agent.Finalize(); err != nil {
			return fmt.Errorf("agent: %w", err)
		}
	}
	if err := c.Engine.Finalize(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvSaldoShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvSaldoVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvSaldoEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
