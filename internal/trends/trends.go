// Package trends serves the trending topics offered as interview subjects.
package trends

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var defaultTopics []byte

// Topic is one trending subject with its engagement signals.
type Topic struct {
	ID         int    `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	Summary    string `json:"summary" yaml:"summary"`
	ViralScore int    `json:"viralScore" yaml:"viralScore"`
	Relevance  string `json:"relevance" yaml:"relevance"`
	Engagement string `json:"engagement" yaml:"engagement"`
	Timeframe  string `json:"timeframe" yaml:"timeframe"`
	Sentiment  string `json:"sentiment" yaml:"sentiment"`
	Source     string `json:"source" yaml:"source"`
	SourceURL  string `json:"sourceUrl" yaml:"sourceUrl"`
	Category   string `json:"category" yaml:"category"`
}

// TopicProvider lists trending topics. An empty category returns all of them.
type TopicProvider interface {
	Topics(ctx context.Context, category string) ([]Topic, error)
}

// StaticTopicProvider serves a fixed list in load order.
type StaticTopicProvider struct {
	topics []Topic
}

func NewStaticTopicProvider(topics []Topic) *StaticTopicProvider {
	cp := make([]Topic, len(topics))
	copy(cp, topics)
	return &StaticTopicProvider{topics: cp}
}

// DefaultProvider returns the provider backed by the embedded topic list.
func DefaultProvider() (*StaticTopicProvider, error) {
	topics, err := Parse(defaultTopics)
	if err != nil {
		return nil, err
	}
	return NewStaticTopicProvider(topics), nil
}

// Parse decodes a YAML topic list.
func Parse(data []byte) ([]Topic, error) {
	var topics []Topic
	if err := yaml.Unmarshal(data, &topics); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}
	seen := make(map[int]bool, len(topics))
	for _, t := range topics {
		if t.Title == "" {
			return nil, fmt.Errorf("topic %d has no title", t.ID)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicate topic id %d", t.ID)
		}
		seen[t.ID] = true
	}
	return topics, nil
}

func (p *StaticTopicProvider) Topics(ctx context.Context, category string) ([]Topic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Topic, 0, len(p.topics))
	for _, t := range p.topics {
		if category != "" && !strings.EqualFold(t.Category, category) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
