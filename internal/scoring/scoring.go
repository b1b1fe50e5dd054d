// Package scoring holds the hooks that attach numeric quality signals to content and users.
//
// No real scoring model exists yet. The Placeholder implementations draw from a bounded
// pseudo-random range and must not be read as predictions; swap in a real ViralScorer or
// AuthorityScorer without touching callers.
package scoring

import (
	"context"
	"math/rand/v2"
	"sync"
)

// Draft is what a ViralScorer sees of a freshly synthesized article.
type Draft struct {
	Title    string
	Body     string
	Template string
	Topics   []string
}

// ViralScorer assigns a 0-100 virality signal to a generated article.
type ViralScorer interface {
	ViralScore(ctx context.Context, d Draft) int
}

// AuthorityScorer assigns the initial 0-100 authority score after onboarding.
type AuthorityScorer interface {
	AuthorityScore(ctx context.Context, expertise []string, samples []string) int
}

// Placeholder returns scores uniformly drawn from [Min, Min+Span).
type Placeholder struct {
	Min  int
	Span int

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewPlaceholderViral returns the placeholder used for article scores: [80,100).
func NewPlaceholderViral(src rand.Source) *Placeholder {
	return newPlaceholder(80, 20, src)
}

// NewPlaceholderAuthority returns the placeholder used after onboarding: [50,80).
func NewPlaceholderAuthority(src rand.Source) *Placeholder {
	return newPlaceholder(50, 30, src)
}

func newPlaceholder(min, span int, src rand.Source) *Placeholder {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Placeholder{Min: min, Span: span, rnd: rand.New(src)}
}

func (p *Placeholder) draw() int {
	if p.Span <= 0 {
		return p.Min
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Min + p.rnd.IntN(p.Span)
}

func (p *Placeholder) ViralScore(_ context.Context, _ Draft) int { return p.draw() }

func (p *Placeholder) AuthorityScore(_ context.Context, _ []string, _ []string) int {
	return p.draw()
}

// Fixed always returns Value. Handy in tests and for deterministic demos.
type Fixed struct{ Value int }

func (f Fixed) ViralScore(context.Context, Draft) int { return f.Value }

func (f Fixed) AuthorityScore(context.Context, []string, []string) int { return f.Value }
