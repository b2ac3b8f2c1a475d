// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package brief

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

const (
	defaultArticleLength = 1800
	defaultTone          = "expert yet friendly"

	maxLinkedIn = 5
	maxTweets   = 8
)

// ArticleRequest describes the article to write. Brief is optional; its
// outline and FAQs are passed to the writer when present. Entities
// defaults to the topic alone.
type ArticleRequest struct {
	Topic        string
	Brief        *types.Brief
	TargetLength int
	Tone         string
	Audience     string
	Entities     []string
}

// Article asks the writing provider for a Markdown article, scores its
// entity coverage and asks for social post angles. A failed social call
// leaves Microcontent empty; a failed article call is returned.
func (w *Writer) Article(ctx context.Context, req ArticleRequest) (types.Article, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" && req.Brief != nil {
		topic = strings.TrimSpace(req.Brief.Topic)
	}
	if topic == "" {
		return types.Article{}, ErrNoTopic
	}

	data := articlePromptData{
		Topic:        topic,
		Tone:         req.Tone,
		Audience:     req.Audience,
		TargetLength: req.TargetLength,
		Entities:     req.Entities,
	}
	if data.Tone == "" {
		data.Tone = defaultTone
	}
	if data.TargetLength <= 0 {
		data.TargetLength = defaultArticleLength
	}
	if len(data.Entities) == 0 {
		data.Entities = []string{topic}
	}
	title := topic
	if req.Brief != nil {
		data.Outline = req.Brief.Outline
		data.FAQs = req.Brief.FAQs
		if req.Brief.Title != "" {
			title = req.Brief.Title
		}
	}

	prompt, err := render(articlePromptTmpl, data)
	if err != nil {
		return types.Article{}, fmt.Errorf("rendering article prompt: %w", err)
	}
	md, err := w.Writing.Complete(ctx, prompt, articleMaxTokens)
	if err != nil {
		return types.Article{}, fmt.Errorf("generating article for %q: %w", topic, err)
	}

	return types.Article{
		Title:        title,
		Markdown:     md,
		Score:        Score(md, data.Entities),
		Microcontent: w.microcontent(ctx, md),
	}, nil
}

func (w *Writer) microcontent(ctx context.Context, article string) map[string][]string {
	out := map[string][]string{"linkedin": {}, "twitter": {}}
	prompt, err := render(socialPromptTmpl, article)
	if err == nil {
		var raw string
		raw, err = w.Writing.Complete(ctx, prompt, socialMaxTokens)
		if err == nil {
			out["linkedin"], out["twitter"] = splitSocial(raw)
			return out
		}
	}
	if w.Logger != nil {
		w.Logger.Warn("social post generation failed", "error", err)
	}
	return out
}

// splitSocial reads "- " bullets in order: the first five are LinkedIn
// angles and the next eight are tweets.
func splitSocial(raw string) (linkedin, tweets []string) {
	linkedin, tweets = []string{}, []string{}
	for _, line := range strings.Split(raw, "\n") {
		item, ok := strings.CutPrefix(strings.TrimSpace(line), "-")
		if !ok {
			continue
		}
		if item = strings.TrimSpace(item); item == "" {
			continue
		}
		switch {
		case len(linkedin) < maxLinkedIn:
			linkedin = append(linkedin, item)
		case len(tweets) < maxTweets:
			tweets = append(tweets, item)
		}
	}
	return linkedin, tweets
}
