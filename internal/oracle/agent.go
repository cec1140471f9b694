package oracle

import (
	"context"
	"fmt"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Agent is an Oracle backed by a go-agents vision agent. A fresh agent is
// created per call so concurrent callers share no client state.
type Agent struct {
	cfg gaconfig.AgentConfig
}

// NewAgent creates an agent-backed oracle from a finalized agent config.
func NewAgent(cfg *gaconfig.AgentConfig) *Agent {
	return &Agent{cfg: *cfg}
}

func (o *Agent) Vision(ctx context.Context, prompt string, images [][]byte) (string, error) {
	if len(images) == 0 {
		return "", ErrNoImages
	}

	a, err := agent.New(&o.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	uris := make([]string, 0, len(images))
	for i, img := range images {
		uri, err := encoding.EncodeImageDataURI(img, document.PNG)
		if err != nil {
			return "", fmt.Errorf("encode image %d: %w", i+1, err)
		}
		uris = append(uris, uri)
	}

	resp, err := a.Vision(ctx, prompt, uris)
	if err != nil {
		return "", fmt.Errorf("vision call: %w", err)
	}

	content := resp.Content()
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}
