package llm

import (
	"context"
	"encoding/json"
	"fmt"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient creates a Gemini-backed Client. The API key comes from the
// service configuration, never from ambient process env at call time.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create gemini client: %w", err)
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "gemini:" + g.model }

func (g *GeminiClient) Close() error { return nil }

// GenerateJSON sends the prompt (and the screenshot, when present) and
// requests application/json output. The reply text is fence-stripped via
// ExtractJSON because models wrap JSON in markdown fences often enough.
func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string, imagePNG []byte) (json.RawMessage, error) {
	parts := []*genai.Part{{Text: prompt}}
	if len(imagePNG) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/png", Data: imagePNG},
		})
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: parts}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, fmt.Errorf("llm: generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrInvalidJSON
	}
	return ExtractJSON(resp.Candidates[0].Content.Parts[0].Text)
}
