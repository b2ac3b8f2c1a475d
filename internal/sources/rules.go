// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"strings"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

// RuleModifiers is the fixed modifier list used for rule-based expansion,
// grouped by intent, audience, location and pain point.
var RuleModifiers = []string{
	"how to", "what is", "vs", "best", "top", "review", "alternatives",
	"for beginners", "for experts", "for students", "for small business",
	"near me", "in usa", "in uk", "in canada",
	"problems", "issues", "risks", "mistakes",
}

// RuleSource expands a seed with every entry of Modifiers.
type RuleSource struct {
	// Modifiers overrides RuleModifiers when non-empty.
	Modifiers []string
}

// Name returns the source identifier.
func (s RuleSource) Name() string { return string(types.SourceRule) }

// Generate never fails. A blank seed yields no candidates.
func (s RuleSource) Generate(_ context.Context, seed string) ([]types.Candidate, error) {
	if strings.TrimSpace(seed) == "" {
		return nil, nil
	}
	mods := s.Modifiers
	if len(mods) == 0 {
		mods = RuleModifiers
	}
	return expand(seed, mods, types.SourceRule), nil
}
