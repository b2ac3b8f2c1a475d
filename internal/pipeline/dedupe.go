// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "github.com/pdiddy/keyword-engine/pkg/types"

// Dedupe keeps the first candidate for each normalized term, preserving
// order, and truncates to limit. A limit <= 0 means no limit. Candidates
// whose term is blank are dropped.
func Dedupe(candidates []types.Candidate, limit int) []types.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if limit > 0 && len(out) >= limit {
			break
		}
		key := c.Key()
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
