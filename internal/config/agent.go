package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/saldo/pkg/settings"
)

const (
	EnvAgentName         = "SALDO_AGENT_NAME"
	EnvAgentProviderName = "SALDO_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "SALDO_AGENT_BASE_URL"
	EnvAgentToken        = "SALDO_AGENT_TOKEN"
	EnvAgentDeployment   = "SALDO_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "SALDO_AGENT_API_VERSION"
	EnvAgentAuthType     = "SALDO_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "SALDO_AGENT_MODEL_NAME"
)

// AgentConfig is the TOML form of the go-agents vision agent used by the
// agent oracle provider.
type AgentConfig struct {
	Name     string         `toml:"name"`
	Provider string         `toml:"provider"`
	BaseURL  string         `toml:"base_url"`
	Model    string         `toml:"model"`
	Options  map[string]any `toml:"options"`

	resolved gaconfig.AgentConfig
}

// Resolved returns the finalized go-agents config. Call after Finalize.
func (c *AgentConfig) Resolved() *gaconfig.AgentConfig {
	return &c.resolved
}

// Finalize converts the section into a go-agents AgentConfig and applies
// FinalizeAgent to it.
func (c *AgentConfig) Finalize() error {
	ag := gaconfig.AgentConfig{Name: c.Name}
	if c.Provider != "" || c.BaseURL != "" || len(c.Options) > 0 {
		ag.Provider = &gaconfig.ProviderConfig{
			Name:    c.Provider,
			BaseURL: c.BaseURL,
			Options: c.Options,
		}
	}
	if c.Model != "" {
		ag.Model = &gaconfig.ModelConfig{Name: c.Model}
	}

	if err := FinalizeAgent(&ag); err != nil {
		return err
	}
	c.resolved = ag
	return nil
}

// Merge overwrites non-zero fields from overlay. Options are merged per key.
func (c *AgentConfig) Merge(overlay *AgentConfig) {
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if len(overlay.Options) > 0 {
		if c.Options == nil {
			c.Options = make(map[string]any, len(overlay.Options))
		}
		for k, v := range overlay.Options {
			c.Options[k] = v
		}
	}
}

// FinalizeAgent applies the three-phase finalize pattern to a go-agents AgentConfig:
// defaults from go-agents DefaultAgentConfig, environment variable overrides, and validation.
func FinalizeAgent(c *gaconfig.AgentConfig) error {
	loadAgentDefaults(c)
	loadAgentEnv(c)
	return validateAgent(c)
}

func loadAgentDefaults(c *gaconfig.AgentConfig) {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults
}

func loadAgentEnv(c *gaconfig.AgentConfig) {
	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = make(map[string]any)
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}
	settings.Env(&c.Name, EnvAgentName)
	settings.Env(&c.Provider.Name, EnvAgentProviderName)
	settings.Env(&c.Provider.BaseURL, EnvAgentBaseURL)
	settings.Env(&c.Model.Name, EnvAgentModelName)

	setOption := func(envVar, key string) {
		if v := os.Getenv(envVar); v != "" {
			c.Provider.Options[key] = v
		}
	}

	setOption(EnvAgentToken, "token")
	setOption(EnvAgentDeployment, "deployment")
	setOption(EnvAgentAPIVersion, "api_version")
	setOption(EnvAgentAuthType, "auth_type")
}

func validateAgent(c *gaconfig.AgentConfig) error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.Provider == nil {
		return fmt.Errorf("provider required")
	}
	if c.Provider.Name == "" {
		return fmt.Errorf("provider name required")
	}
	if c.Model == nil {
		return fmt.Errorf("model required")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model name required")
	}
	return nil
}
