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

// FallbackQuestion is asked whenever the generator fails.
const FallbackQuestion = "What unique perspective do you bring to this topic based on your experience?"

const (
	questionMaxTokens = 200
	temperature       = 0.7
)

// Exchange is one answered question.
type Exchange struct {
	Question string
	Response string
}

// QuestionRequest is the context for the next interview question. History must
// only contain answered exchanges.
type QuestionRequest struct {
	Topics   []string
	Template templates.Template
	History  []Exchange
}

// QuestionGenerator asks the generator for the next interviewer question.
type QuestionGenerator struct {
	gen Generator
}

func NewQuestionGenerator(g Generator) *QuestionGenerator {
	return &QuestionGenerator{gen: g}
}

// Next never fails: generator errors and empty output yield FallbackQuestion.
func (q *QuestionGenerator) Next(ctx context.Context, req QuestionRequest) string {
	start := time.Now()
	defer func() {
		metrics.GenerationLatency.WithLabelValues("question").Observe(time.Since(start).Seconds())
	}()
	if q.gen == nil {
		metrics.Generations.WithLabelValues("question", "fallback").Inc()
		return FallbackQuestion
	}
	out, err := q.gen.Generate(ctx, questionPrompt(req), Params{MaxTokens: questionMaxTokens, Temperature: temperature})
	out = cleanQuestion(out)
	if err != nil || out == "" {
		logger.Warnf("question generation failed, using fallback: %v", errOrEmpty(err))
		metrics.Generations.WithLabelValues("question", "fallback").Inc()
		return FallbackQuestion
	}
	metrics.Generations.WithLabelValues("question", "ok").Inc()
	return out
}

func questionPrompt(req QuestionRequest) string {
	qs := make([]string, 0, len(req.History))
	rs := make([]string, 0, len(req.History))
	for _, e := range req.History {
		qs = append(qs, e.Question)
		rs = append(rs, e.Response)
	}
	var b strings.Builder
	b.WriteString("You are an expert interviewer conducting a dynamic interview for thought leadership content creation.\n\n")
	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "Topics: %s\n", strings.Join(req.Topics, ", "))
	fmt.Fprintf(&b, "Template: %s\n", templateLabel(req.Template))
	if req.Template.Voice != "" {
		fmt.Fprintf(&b, "Voice: %s\n", req.Template.Voice)
	}
	fmt.Fprintf(&b, "Previous questions: %s\n", strings.Join(qs, "; "))
	fmt.Fprintf(&b, "Previous responses: %s\n\n", strings.Join(rs, "; "))
	b.WriteString("Generate the next intelligent question that:\n")
	b.WriteString("1. Builds on previous responses\n")
	b.WriteString("2. Challenges the user's thinking\n")
	b.WriteString("3. Extracts unique insights and expertise\n")
	b.WriteString("4. Is relevant to the selected topics and template\n")
	b.WriteString("5. Helps develop a comprehensive position\n\n")
	b.WriteString("Reply with the question only.\n\nQuestion:")
	return b.String()
}

func templateLabel(t templates.Template) string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

// cleanQuestion trims whitespace and a leading "Question:" label.
func cleanQuestion(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len("question:") && strings.EqualFold(s[:len("question:")], "question:") {
		s = strings.TrimSpace(s[len("question:"):])
	}
	return s
}

func errOrEmpty(err error) error {
	if err != nil {
		return err
	}
	return ErrEmptyOutput
}
