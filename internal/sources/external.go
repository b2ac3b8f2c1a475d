// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

// ExternalSource gathers autocomplete, people-also-ask and related terms
// from a SearchBackend. The three lookups run concurrently; a failing lookup
// contributes nothing and does not affect its siblings.
type ExternalSource struct {
	Backend SearchBackend
	Logger  *slog.Logger
}

// Name returns the source identifier.
func (s ExternalSource) Name() string { return string(types.SourceExternal) }

type lookup struct {
	name string
	fn   func(context.Context, string) ([]types.Candidate, error)
}

// Generate returns autocomplete, then people-also-ask, then related results.
// The error joins the failures of individual lookups; candidates from the
// lookups that succeeded are returned alongside it.
func (s ExternalSource) Generate(ctx context.Context, seed string) ([]types.Candidate, error) {
	if s.Backend == nil {
		return nil, fmt.Errorf("external source: %w", ErrSourceUnavailable)
	}

	lookups := []lookup{
		{"autocomplete", s.Backend.Autocomplete},
		{"people_also_ask", s.Backend.PeopleAlsoAsk},
		{"related", s.Backend.Related},
	}

	results := make([][]types.Candidate, len(lookups))
	errs := make([]error, len(lookups))

	var wg sync.WaitGroup
	for i, l := range lookups {
		wg.Add(1)
		go func(i int, l lookup) {
			defer wg.Done()
			cands, err := l.fn(ctx, seed)
			if err != nil {
				errs[i] = fmt.Errorf("%s %s: %w", s.Backend.Name(), l.name, err)
				return
			}
			results[i] = cands
		}(i, l)
	}
	wg.Wait()

	var all []types.Candidate
	for i := range lookups {
		if errs[i] != nil {
			if s.Logger != nil {
				s.Logger.Warn("external lookup failed", "seed", seed, "lookup", lookups[i].name, "error", errs[i])
			}
			continue
		}
		all = append(all, keepNonEmpty(results[i])...)
	}
	return all, errors.Join(errs...)
}

func keepNonEmpty(cands []types.Candidate) []types.Candidate {
	out := cands[:0:0]
	for _, c := range cands {
		if types.NormalizeTerm(c.Term) != "" {
			out = append(out, c)
		}
	}
	return out
}
