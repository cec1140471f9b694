package oracle

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAI is an Oracle backed by the Google GenAI SDK (Gemini API or Vertex
// AI). Replies are requested as JSON.
type GenAI struct {
	client *genai.Client
	model  string
}

// NewGenAI creates a GenAI client for the configured backend.
func NewGenAI(ctx context.Context, cfg *GenAIConfig) (*GenAI, error) {
	cc := &genai.ClientConfig{APIKey: cfg.APIKey}

	switch cfg.Backend {
	case BackendVertex:
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	default:
		cc.Backend = genai.BackendGeminiAPI
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GenAI{client: client, model: cfg.Model}, nil
}

func (o *GenAI) Vision(ctx context.Context, prompt string, images [][]byte) (string, error) {
	if len(images) == 0 {
		return "", ErrNoImages
	}

	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, img := range images {
		parts = append(parts, genai.NewPartFromBytes(img, "image/png"))
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := o.client.Models.GenerateContent(ctx, o.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
