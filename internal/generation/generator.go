// Package generation adapts external language-model providers to a single
// Generator interface and builds the interview and article prompts on top of it.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/authorityai/authorityai/backend/go-services/internal/config"
)

// ErrEmptyOutput is returned by providers that answered without any text.
var ErrEmptyOutput = errors.New("generator returned no text")

// Params bounds a single generation call.
type Params struct {
	MaxTokens   int
	Temperature float64
}

// Generator is the external text-generation collaborator. It is fallible and slow.
type Generator interface {
	Generate(ctx context.Context, prompt string, p Params) (string, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string, p Params) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	return f(ctx, prompt, p)
}

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

// WithTimeout bounds every call to g by d. A non-positive d returns g unchanged.
func WithTimeout(g Generator, d time.Duration) Generator {
	if d <= 0 {
		return g
	}
	return &timeoutGenerator{next: g, timeout: d}
}

func (t *timeoutGenerator) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, prompt, p)
}

const (
	defaultOpenAIModel = "gpt-4"
	defaultGeminiModel = "gemini-2.0-flash"
)

// NewFromConfig builds the configured provider wrapped with the configured timeout.
func NewFromConfig(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	var (
		g   Generator
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		g, err = NewOpenAIGenerator(cfg.APIKey, cfg.BaseURL, model)
	case "gemini":
		model := cfg.Model
		if model == "" {
			model = defaultGeminiModel
		}
		g, err = NewGeminiGenerator(ctx, cfg.APIKey, model)
	case "mock":
		g = NewMockGenerator()
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithTimeout(g, cfg.Timeout), nil
}
