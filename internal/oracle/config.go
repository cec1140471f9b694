package oracle

import (
	"errors"
	"fmt"
	"time"

	"github.com/JaimeStill/saldo/pkg/settings"
)

const (
	ProviderAgent = "agent"
	ProviderGenAI = "genai"

	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

// Config selects the vision provider and controls call concurrency and
// retry behavior.
type Config struct {
	Provider       string      `toml:"provider"`
	Workers        int         `toml:"workers"`
	MaxAttempts    int         `toml:"max_attempts"`
	InitialBackoff string      `toml:"initial_backoff"`
	MaxBackoff     string      `toml:"max_backoff"`
	GenAI          GenAIConfig `toml:"genai"`
}

// GenAIConfig holds Google GenAI connection parameters.
type GenAIConfig struct {
	Backend  string `toml:"backend"`
	APIKey   string `toml:"api_key"`
	Project  string `toml:"project"`
	Location string `toml:"location"`
	Model    string `toml:"model"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider       string
	Workers        string
	MaxAttempts    string
	InitialBackoff string
	MaxBackoff     string
	GenAIBackend   string
	GenAIAPIKey    string
	GenAIProject   string
	GenAILocation  string
	GenAIModel     string
}

// Policy returns the retry policy described by the config. Call after
// Finalize.
func (c *Config) Policy() RetryPolicy {
	initial, _ := time.ParseDuration(c.InitialBackoff)
	maxBackoff, _ := time.ParseDuration(c.MaxBackoff)
	return RetryPolicy{
		MaxAttempts:    c.MaxAttempts,
		InitialBackoff: initial,
		MaxBackoff:     maxBackoff,
	}
}

// Finalize applies environment overrides and defaults, then validates.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		settings.Env(&c.Provider, env.Provider)
		settings.EnvInt(&c.Workers, env.Workers)
		settings.EnvInt(&c.MaxAttempts, env.MaxAttempts)
		settings.Env(&c.InitialBackoff, env.InitialBackoff)
		settings.Env(&c.MaxBackoff, env.MaxBackoff)
		settings.Env(&c.GenAI.Backend, env.GenAIBackend)
		settings.Env(&c.GenAI.APIKey, env.GenAIAPIKey)
		settings.Env(&c.GenAI.Project, env.GenAIProject)
		settings.Env(&c.GenAI.Location, env.GenAILocation)
		settings.Env(&c.GenAI.Model, env.GenAIModel)
	}

	settings.Default(&c.Provider, ProviderAgent)
	settings.Default(&c.Workers, 3)
	settings.Default(&c.MaxAttempts, 3)
	settings.Default(&c.InitialBackoff, "1s")
	settings.Default(&c.MaxBackoff, "15s")
	settings.Default(&c.GenAI.Backend, BackendGemini)
	settings.Default(&c.GenAI.Model, "gemini-2.5-flash")

	return c.validate()
}

// Merge replaces the fields set in overlay.
func (c *Config) Merge(overlay *Config) {
	settings.Merge(&c.Provider, overlay.Provider)
	settings.Merge(&c.Workers, overlay.Workers)
	settings.Merge(&c.MaxAttempts, overlay.MaxAttempts)
	settings.Merge(&c.InitialBackoff, overlay.InitialBackoff)
	settings.Merge(&c.MaxBackoff, overlay.MaxBackoff)
	settings.Merge(&c.GenAI.Backend, overlay.GenAI.Backend)
	settings.Merge(&c.GenAI.APIKey, overlay.GenAI.APIKey)
	settings.Merge(&c.GenAI.Project, overlay.GenAI.Project)
	settings.Merge(&c.GenAI.Location, overlay.GenAI.Location)
	settings.Merge(&c.GenAI.Model, overlay.GenAI.Model)
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.MaxAttempts < 1 {
		return errors.New("max_attempts must be at least 1")
	}
	initial, err := settings.Duration("initial_backoff", c.InitialBackoff)
	if err != nil {
		return err
	}
	maxBackoff, err := settings.Duration("max_backoff", c.MaxBackoff)
	if err != nil {
		return err
	}
	if maxBackoff < initial {
		return errors.New("max_backoff must not be less than initial_backoff")
	}

	switch c.Provider {
	case ProviderAgent:
		return nil
	case ProviderGenAI:
		return c.GenAI.validate()
	default:
		return fmt.Errorf("%w: %q", ErrInvalidProvider, c.Provider)
	}
}

func (c *GenAIConfig) validate() error {
	if c.Model == "" {
		return errors.New("genai model required")
	}
	switch c.Backend {
	case BackendGemini:
		if c.APIKey == "" {
			return errors.New("genai api_key required for gemini backend")
		}
	case BackendVertex:
		if c.Project == "" || c.Location == "" {
			return errors.New("genai project and location required for vertex backend")
		}
	default:
		return fmt.Errorf("invalid genai backend %q", c.Backend)
	}
	return nil
}
