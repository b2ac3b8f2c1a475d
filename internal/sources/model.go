// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/keyword-engine/internal/completion"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

const (
	// ModelVariants is the number of variants requested and the cap on parsed lines.
	ModelVariants = 50

	modelMaxTokens = 800
	minTermLength  = 3
)

// ModelSource asks a text-completion provider for long-tail variants of a seed.
type ModelSource struct {
	Completer completion.Completer
}

// Name returns the source identifier.
func (s ModelSource) Name() string { return string(types.SourceModel) }

// Generate issues one completion request and parses one candidate per line.
// Errors are returned as-is; the pipeline turns them into a degraded outcome.
func (s ModelSource) Generate(ctx context.Context, seed string) ([]types.Candidate, error) {
	if s.Completer == nil {
		return nil, fmt.Errorf("model expansion: %w", ErrSourceUnavailable)
	}
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil, nil
	}

	text, err := s.Completer.Complete(ctx, expansionPrompt(seed), modelMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("model expansion for %q: %w", seed, err)
	}

	terms := ParseLines(text, ModelVariants)
	if len(terms) == 0 && strings.TrimSpace(text) != "" {
		return nil, fmt.Errorf("model expansion for %q: %w", seed, ErrMalformedResponse)
	}

	out := make([]types.Candidate, 0, len(terms))
	for _, t := range terms {
		out = append(out, types.Candidate{Term: t, Source: types.SourceModel})
	}
	return out, nil
}

func expansionPrompt(seed string) string {
	return fmt.Sprintf("Generate %d long-tail keyword variations for: '%s'.\n"+
		"Mix intents (informational, transactional, comparison), audiences, locations, and pain points.\n"+
		"Return one variant per line, no numbering.", ModelVariants, seed)
}

// ParseLines splits completion text into terms: one per line, leading bullet
// markers and list numbering stripped, lines shorter than three characters
// dropped, at most limit terms kept.
func ParseLines(text string, limit int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		t := stripBullet(strings.TrimSpace(line))
		if len([]rune(t)) < minTermLength {
			continue
		}
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// stripBullet removes leading "-", "*", "•" markers and "1." / "1)" numbering.
func stripBullet(s string) string {
	s = strings.TrimLeft(s, "-*•· \t")

	digits := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if digits > 0 && (s[digits] == '.' || s[digits] == ')') {
		s = s[digits+1:]
	}
	return strings.TrimSpace(s)
}
