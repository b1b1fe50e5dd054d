package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/authorityai/authorityai/backend/go-services/internal/config"
	"github.com/authorityai/authorityai/backend/go-services/internal/templates"
	"github.com/authorityai/authorityai/backend/go-services/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// recorder captures the last call and replies with out/err.
type recorder struct {
	out    string
	err    error
	prompt string
	params Params
}

func (r *recorder) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	r.prompt, r.params = prompt, p
	return r.out, r.err
}

func opinion(t *testing.T) templates.Template {
	t.Helper()
	tpl, ok := templates.Lookup("opinion-piece")
	require.True(t, ok)
	return tpl
}

func TestQuestionGenerator_PromptAndParams(t *testing.T) {
	rec := &recorder{out: "  Question: How would you measure fairness?  "}
	q := NewQuestionGenerator(rec).Next(context.Background(), QuestionRequest{
		Topics:   []string{"AI Ethics", "Regulation"},
		Template: opinion(t),
		History:  []Exchange{{Question: "Why now?", Response: "Because the EU acted."}},
	})
	require.Equal(t, "How would you measure fairness?", q)
	require.Equal(t, Params{MaxTokens: 200, Temperature: 0.7}, rec.params)
	require.Contains(t, rec.prompt, "Topics: AI Ethics, Regulation")
	require.Contains(t, rec.prompt, "Template: Opinion Piece")
	require.Contains(t, rec.prompt, "Previous questions: Why now?")
	require.Contains(t, rec.prompt, "Previous responses: Because the EU acted.")
	require.Contains(t, rec.prompt, "Challenges the user's thinking")
}

func TestQuestionGenerator_Fallbacks(t *testing.T) {
	before := testutil.ToFloat64(metrics.Generations.WithLabelValues("question", "fallback"))
	for _, g := range []Generator{
		&recorder{err: errors.New("provider down")},
		&recorder{out: "   "},
		nil,
	} {
		require.Equal(t, FallbackQuestion, NewQuestionGenerator(g).Next(context.Background(), QuestionRequest{Topics: []string{"x"}}))
	}
	after := testutil.ToFloat64(metrics.Generations.WithLabelValues("question", "fallback"))
	require.Equal(t, before+3, after)
}

func TestQuestionGenerator_TimeoutFallsBack(t *testing.T) {
	slow := GeneratorFunc(func(ctx context.Context, _ string, _ Params) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
			return "too late", nil
		}
	})
	q := NewQuestionGenerator(WithTimeout(slow, 20*time.Millisecond)).Next(context.Background(), QuestionRequest{})
	require.Equal(t, FallbackQuestion, q)
}

func TestParseArticle(t *testing.T) {
	cases := []struct {
		raw, title, body string
	}{
		{"Title: The Real Cost of AI\n\nBody text here.", "The Real Cost of AI", "Body text here."},
		{"# Heading Title\nLine one\nLine two", "Heading Title", "Line one\nLine two"},
		{"## **Bold Title**\n\nText", "Bold Title", "Text"},
		{"\n\nPlain Title\nBody", "Plain Title", "Body"},
		{"Only a title", "Only a title", ""},
		{"", "", ""},
	}
	for _, c := range cases {
		title, body := ParseArticle(c.raw)
		require.Equal(t, c.title, title, c.raw)
		require.Equal(t, c.body, body, c.raw)
	}
}

func TestSynthesizer_Success(t *testing.T) {
	rec := &recorder{out: "Title: Trust Is a Feature\n\nLeaders must...\n\n## Recommendations\n- Audit models"}
	art := NewSynthesizer(rec).Synthesize(context.Background(), ArticleRequest{
		Topics:   []string{"AI Ethics"},
		Template: opinion(t),
		Transcript: []Exchange{
			{Question: "Q1", Response: "A1"},
			{Question: "Q2", Response: "A2"},
		},
	})
	require.False(t, art.Fallback)
	require.Equal(t, "Trust Is a Feature", art.Title)
	require.True(t, strings.HasPrefix(art.Body, "Leaders must"))
	require.Equal(t, Params{MaxTokens: 2000, Temperature: 0.7}, rec.params)
	require.Contains(t, rec.prompt, "Based on this interview about AI Ethics, write an article in the Opinion Piece format (800-1200 words)")
	require.Contains(t, rec.prompt, "Topics: AI Ethics\n")
	require.Contains(t, rec.prompt, "Q: Q1\nA: A1\n\nQ: Q2\nA: A2")
	require.Contains(t, rec.prompt, "actionable recommendations")
}

func TestSynthesizer_Fallbacks(t *testing.T) {
	for _, g := range []Generator{
		&recorder{err: context.DeadlineExceeded},
		&recorder{out: "Just a title"},
		&recorder{out: ""},
		nil,
	} {
		art := NewSynthesizer(g).Synthesize(context.Background(), ArticleRequest{Topics: []string{"x"}})
		require.True(t, art.Fallback)
		require.Equal(t, FallbackTitle, art.Title)
		require.Equal(t, FallbackBody, art.Body)
	}
}

func TestMockGenerator(t *testing.T) {
	m := NewMockGenerator()
	q := NewQuestionGenerator(m).Next(context.Background(), QuestionRequest{Topics: []string{"Remote Work"}})
	require.Contains(t, q, "Remote Work")
	art := NewSynthesizer(m).Synthesize(context.Background(), ArticleRequest{Topics: []string{"Remote Work", "AI"}})
	require.False(t, art.Fallback)
	require.Equal(t, "Leading Through Remote Work, AI", art.Title)
	require.NotEmpty(t, art.Body)
	require.EqualValues(t, 2, m.Calls())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Generate(ctx, "p", Params{})
	require.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	g, err := NewFromConfig(context.Background(), config.LLMConfig{Provider: "mock"})
	require.NoError(t, err)
	require.IsType(t, &MockGenerator{}, g)

	g, err = NewFromConfig(context.Background(), config.LLMConfig{Provider: "mock", Timeout: time.Second})
	require.NoError(t, err)
	require.IsType(t, &timeoutGenerator{}, g)

	_, err = NewFromConfig(context.Background(), config.LLMConfig{Provider: "openai"})
	require.Error(t, err)

	g, err = NewFromConfig(context.Background(), config.LLMConfig{Provider: "openai", APIKey: "sk-test"})
	require.NoError(t, err)
	require.Equal(t, defaultOpenAIModel, g.(*OpenAIGenerator).model)

	_, err = NewFromConfig(context.Background(), config.LLMConfig{Provider: "carrier-pigeon"})
	require.Error(t, err)
}
