package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/authorityai/authorityai/backend/go-services/internal/templates"
	"github.com/authorityai/authorityai/backend/go-services/pkg/logger"
	"github.com/authorityai/authorityai/backend/go-services/pkg/metrics"
)

const (
	FallbackTitle = "Generated Content"
	FallbackBody  = "Content generation is currently unavailable. Please try again later."

	articleMaxTokens = 2000
)

// ArticleRequest is a finished interview ready to be written up.
type ArticleRequest struct {
	Topics     []string
	Template   templates.Template
	Transcript []Exchange
}

// Article is a generated title and markdown body. Fallback is set when the
// generator failed and the fixed placeholder was returned instead.
type Article struct {
	Title    string
	Body     string
	Fallback bool
}

// Synthesizer writes long-form articles from interview transcripts.
type Synthesizer struct {
	gen Generator
}

func NewSynthesizer(g Generator) *Synthesizer { return &Synthesizer{gen: g} }

// Synthesize never fails: generator errors, empty output, or output without both a
// title and a body yield the fallback article.
func (s *Synthesizer) Synthesize(ctx context.Context, req ArticleRequest) Article {
	start := time.Now()
	defer func() {
		metrics.GenerationLatency.WithLabelValues("content").Observe(time.Since(start).Seconds())
	}()
	fallback := Article{Title: FallbackTitle, Body: FallbackBody, Fallback: true}
	if s.gen == nil {
		metrics.Generations.WithLabelValues("content", "fallback").Inc()
		return fallback
	}
	raw, err := s.gen.Generate(ctx, articlePrompt(req), Params{MaxTokens: articleMaxTokens, Temperature: temperature})
	if err != nil {
		logger.Warnf("content generation failed, using fallback: %v", err)
		metrics.Generations.WithLabelValues("content", "fallback").Inc()
		return fallback
	}
	title, body := ParseArticle(raw)
	if title == "" || body == "" {
		logger.Warnf("content generation returned no usable title/body (%d bytes), using fallback", len(raw))
		metrics.Generations.WithLabelValues("content", "fallback").Inc()
		return fallback
	}
	metrics.Generations.WithLabelValues("content", "ok").Inc()
	return Article{Title: title, Body: body}
}

// ParseArticle splits raw generator output: the first non-blank line is the title,
// with heading markers and a "Title:" label removed, and the rest is the body.
func ParseArticle(raw string) (title, body string) {
	lines := strings.Split(strings.ReplaceAll(strings.TrimSpace(raw), "\r\n", "\n"), "\n")
	if len(lines) == 0 {
		return "", ""
	}
	title = strings.TrimSpace(lines[0])
	title = strings.TrimSpace(strings.TrimLeft(title, "#"))
	if len(title) >= len("title:") && strings.EqualFold(title[:len("title:")], "title:") {
		title = strings.TrimSpace(title[len("title:"):])
	}
	title = strings.TrimSpace(strings.Trim(title, "*"))
	body = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	return title, body
}

func articlePrompt(req ArticleRequest) string {
	var transcript []string
	for _, e := range req.Transcript {
		transcript = append(transcript, fmt.Sprintf("Q: %s\nA: %s", e.Question, e.Response))
	}
	words := "1000-2000 words"
	if req.Template.Words.Max > 0 {
		words = fmt.Sprintf("%d-%d words", req.Template.Words.Min, req.Template.Words.Max)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Based on this interview about %s, write an article in the %s format (%s) that:\n\n",
		strings.Join(req.Topics, " and "), templateLabel(req.Template), words)
	fmt.Fprintf(&b, "Topics: %s\n\n", strings.Join(req.Topics, ", "))
	b.WriteString("1. Establishes the author's authority and expertise\n")
	b.WriteString("2. Provides unique insights and perspectives, citing the author's own answers\n")
	b.WriteString("3. Includes relevant examples and evidence\n")
	b.WriteString("4. Has a clear, compelling argument\n")
	b.WriteString("5. Ends with actionable recommendations\n\n")
	if req.Template.Voice != "" {
		fmt.Fprintf(&b, "Voice: %s\n\n", req.Template.Voice)
	}
	fmt.Fprintf(&b, "Interview responses:\n%s\n\n", strings.Join(transcript, "\n\n"))
	b.WriteString("Put a professional title on the first line, then the full article in markdown.")
	return b.String()
}
