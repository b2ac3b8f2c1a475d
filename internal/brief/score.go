// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package brief

import (
	"strings"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

const (
	coverageWeight  = 0.7
	diversityWeight = 0.3

	// diversityTerms is the number of distinct weighted terms that earns
	// the full diversity share.
	diversityTerms = 30
)

// Score rates text against its target entities:
// 0.7 x entity coverage + 0.3 x min(1, distinct terms / 30).
// Entities match case-insensitively as substrings. With no non-blank
// entity the score is zero.
func Score(text string, entities []string) types.OptimizationScore {
	out := types.OptimizationScore{Covered: []string{}, Missing: []string{}}
	lower := strings.ToLower(text)
	for _, e := range entities {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if strings.Contains(lower, e) {
			out.Covered = append(out.Covered, e)
		} else {
			out.Missing = append(out.Missing, e)
		}
	}
	total := len(out.Covered) + len(out.Missing)
	if total == 0 {
		return out
	}

	coverage := float64(len(out.Covered)) / float64(total)
	diversity := min(1, float64(len(TopTerms([]string{text}, diversityTerms)))/diversityTerms)
	out.Value = coverageWeight*coverage + diversityWeight*diversity
	return out
}
