// Package oracle provides the vision-understanding clients that interpret
// scanned freight documents. Providers wrap go-agents or the Google GenAI
// SDK; Ask adds bounded retries with exponential backoff on top of any
// provider.
package oracle

import (
	"context"
	"fmt"
	"log/slog"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Oracle sends an instruction and one or more page images to a vision model
// and returns the raw text of its reply.
type Oracle interface {
	Vision(ctx context.Context, prompt string, images [][]byte) (string, error)
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, prompt string, images [][]byte) (string, error)

func (f Func) Vision(ctx context.Context, prompt string, images [][]byte) (string, error) {
	return f(ctx, prompt, images)
}

// New creates the configured provider. agent is only consulted for the
// agent provider.
func New(ctx context.Context, cfg *Config, agent *gaconfig.AgentConfig, logger *slog.Logger) (Oracle, error) {
	logger = logger.With("system", "oracle", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderAgent:
		if agent == nil {
			return nil, fmt.Errorf("%w: agent config required", ErrInvalidProvider)
		}
		logger.Info("oracle ready", "model", modelName(agent))
		return NewAgent(agent), nil
	case ProviderGenAI:
		o, err := NewGenAI(ctx, &cfg.GenAI)
		if err != nil {
			return nil, err
		}
		logger.Info("oracle ready", "backend", cfg.GenAI.Backend, "model", cfg.GenAI.Model)
		return o, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidProvider, cfg.Provider)
	}
}

func modelName(c *gaconfig.AgentConfig) string {
	if c.Model == nil {
		return ""
	}
	return c.Model.Name
}
