package generation

import (
	"context"
	"errors"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiGenerator calls Models.GenerateContent on the Gemini API backend.
type GeminiGenerator struct {
	cli   *genai.Client
	model string
}

// NewGeminiGenerator falls back to GOOGLE_API_KEY / GEMINI_API_KEY when apiKey is empty.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{cli: cli, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(float32(p.Temperature))}
	if p.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(p.MaxTokens)
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		cfg,
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty candidates")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", ErrEmptyOutput
	}
	return out, nil
}
