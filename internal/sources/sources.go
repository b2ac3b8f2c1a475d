// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources proposes candidate keywords for a seed. Each strategy
// (rule-based modifiers, language-model expansion, an external search
// backend) implements Source; the pipeline fans out to all of them.
package sources

import (
	"context"
	"errors"
	"strings"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

var (
	// ErrSourceUnavailable marks a source that is unconfigured or failing.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedResponse marks a response that could not be parsed into candidates.
	ErrMalformedResponse = errors.New("malformed response")
)

// Source generates candidates for one seed. A Source may return candidates
// together with a non-nil error when part of its work failed; callers keep
// whatever candidates were returned.
type Source interface {
	Name() string
	Generate(ctx context.Context, seed string) ([]types.Candidate, error)
}

// SearchBackend is the external search capability: suggestion-style
// candidate lookups and ranked top results for a query. Unconfigured
// backends return synthetic or empty results rather than errors.
type SearchBackend interface {
	Name() string
	Autocomplete(ctx context.Context, seed string) ([]types.Candidate, error)
	PeopleAlsoAsk(ctx context.Context, seed string) ([]types.Candidate, error)
	Related(ctx context.Context, seed string) ([]types.Candidate, error)
	TopResults(ctx context.Context, query string, topN int) ([]types.SearchResult, error)
}

// expand builds one candidate per modifier as "<seed> <modifier>".
func expand(seed string, modifiers []string, source types.CandidateSource) []types.Candidate {
	base := strings.TrimSpace(seed)
	out := make([]types.Candidate, 0, len(modifiers))
	for _, mod := range modifiers {
		out = append(out, types.Candidate{
			Term:      base + " " + mod,
			Source:    source,
			Modifiers: []string{mod},
		})
	}
	return out
}
