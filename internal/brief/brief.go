// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package brief turns a topic and its keywords into a content brief and a
// long-form article through the completion providers, and scores the
// article's coverage of its target entities.
package brief

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/keyword-engine/internal/completion"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

// ErrNoTopic is returned when the topic is blank.
var ErrNoTopic = errors.New("no topic provided")

const (
	briefMaxTokens   = 1200
	articleMaxTokens = 4096
	socialMaxTokens  = 1000

	maxOutline         = 12
	maxFAQs            = 10
	maxSectionKeywords = 5
)

// defaultSchemas are suggested for every brief.
var defaultSchemas = []string{"Article", "FAQ"}

// Writer produces briefs with the research provider and articles with the
// writing provider.
type Writer struct {
	Research completion.Completer
	Writing  completion.Completer
	Logger   *slog.Logger
}

// NewWriter resolves the research and writing providers from cfg.
func NewWriter(cfg types.CompletionConfig, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	research, rp := completion.Resolve(cfg, completion.RoleResearch, logger)
	writing, wp := completion.Resolve(cfg, completion.RoleWriting, logger)
	logger.Debug("content providers resolved", "research", string(rp), "writing", string(wp))
	return &Writer{Research: research, Writing: writing, Logger: logger}
}

// Brief asks the research provider for a content brief on topic and parses
// the reply.
func (w *Writer) Brief(ctx context.Context, topic string, keywords []string) (types.Brief, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return types.Brief{}, ErrNoTopic
	}
	prompt, err := render(briefPromptTmpl, briefPromptData{Topic: topic, Keywords: keywords})
	if err != nil {
		return types.Brief{}, fmt.Errorf("rendering brief prompt: %w", err)
	}
	raw, err := w.Research.Complete(ctx, prompt, briefMaxTokens)
	if err != nil {
		return types.Brief{}, fmt.Errorf("generating brief for %q: %w", topic, err)
	}
	return ParseBrief(raw, topic, keywords), nil
}

// ParseBrief reads a brief from line-oriented model output. The first
// "Title:" and "H1:" lines give the title and heading; bullets ending in a
// question become FAQs and the other bullets become outline headings.
// Missing values default to "<topic> (Brief)" and the title.
func ParseBrief(raw, topic string, keywords []string) types.Brief {
	var title, h1 string
	var headings, faqs []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if v, ok := cutLabel(line, "title:"); ok && title == "" {
			title = v
			continue
		}
		if v, ok := cutLabel(line, "h1:"); ok && h1 == "" {
			h1 = v
			continue
		}
		item, ok := strings.CutPrefix(line, "-")
		if !ok {
			continue
		}
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "?") {
			faqs = append(faqs, item)
		} else {
			headings = append(headings, item)
		}
	}

	if title == "" {
		title = topic + " (Brief)"
	}
	if h1 == "" {
		h1 = title
	}

	kw := keywords[:min(len(keywords), maxSectionKeywords)]
	outline := make([]types.BriefSection, 0, min(len(headings), maxOutline))
	for _, h := range headings[:min(len(headings), maxOutline)] {
		outline = append(outline, types.BriefSection{Heading: h, TargetKeywords: append([]string{}, kw...)})
	}
	if faqs == nil {
		faqs = []string{}
	}

	return types.Brief{
		Topic:                   topic,
		Title:                   title,
		H1:                      h1,
		Outline:                 outline,
		FAQs:                    faqs[:min(len(faqs), maxFAQs)],
		SchemaSuggestions:       append([]string{}, defaultSchemas...),
		InternalLinkSuggestions: []string{},
	}
}

// cutLabel strips a case-insensitive label prefix from line.
func cutLabel(line, label string) (string, bool) {
	if len(line) < len(label) || !strings.EqualFold(line[:len(label)], label) {
		return "", false
	}
	return strings.TrimSpace(line[len(label):]), true
}

// ReadBrief reads a brief saved as YAML or JSON.
func ReadBrief(r io.Reader) (types.Brief, error) {
	var b types.Brief
	data, err := io.ReadAll(r)
	if err != nil {
		return b, fmt.Errorf("reading brief: %w", err)
	}
	if err := yaml.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("parsing brief: %w", err)
	}
	return b, nil
}
