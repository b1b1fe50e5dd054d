package generation

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// MockGenerator produces canned but prompt-dependent text for local development
// without a provider account.
type MockGenerator struct {
	calls atomic.Int64
}

func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

// Calls reports how many times Generate ran.
func (m *MockGenerator) Calls() int64 { return m.calls.Load() }

func (m *MockGenerator) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n := m.calls.Add(1)
	topic := firstLineAfter(prompt, "Topics:")
	if p.MaxTokens > 0 && p.MaxTokens <= 500 {
		return fmt.Sprintf("Question %d: what have you seen change most in %s, and what do most leaders still get wrong about it?", n, topic), nil
	}
	return fmt.Sprintf("Title: Leading Through %s\n\nThis is a locally generated draft about %s.\n\n## Recommendations\n\n- Act on the insights above.", topic, topic), nil
}

func firstLineAfter(s, marker string) string {
	i := strings.Index(s, marker)
	if i < 0 {
		return "your field"
	}
	rest := s[i+len(marker):]
	if j := strings.IndexByte(rest, '\n'); j >= 0 {
		rest = rest[:j]
	}
	if rest = strings.TrimSpace(rest); rest == "" {
		return "your field"
	}
	return rest
}
