// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package linking suggests internal links between pages that target
// overlapping keywords.
package linking

import (
	"fmt"
	"io"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

// DefaultTopK is the number of suggestions kept per page.
const DefaultTopK = 5

// Link is a suggested target page and the number of keywords it shares
// with the source page.
type Link struct {
	Page    string `json:"page" yaml:"page"`
	Overlap int    `json:"overlap" yaml:"overlap"`
}

// Suggest ranks, for every page, the other pages by shared normalized
// keywords, highest overlap first and ties by page id. Pages with no
// overlap are left out. Every input page has an entry, possibly empty. A
// topK <= 0 uses DefaultTopK.
func Suggest(pages map[string][]string, topK int) map[string][]Link {
	if topK <= 0 {
		topK = DefaultTopK
	}

	sets := make(map[string]map[string]struct{}, len(pages))
	for id, kws := range pages {
		set := make(map[string]struct{}, len(kws))
		for _, kw := range kws {
			if k := types.NormalizeTerm(kw); k != "" {
				set[k] = struct{}{}
			}
		}
		sets[id] = set
	}

	out := make(map[string][]Link, len(pages))
	for a, kwa := range sets {
		links := []Link{}
		for b, kwb := range sets {
			if a == b {
				continue
			}
			if n := overlap(kwa, kwb); n > 0 {
				links = append(links, Link{Page: b, Overlap: n})
			}
		}
		sort.Slice(links, func(i, j int) bool {
			if links[i].Overlap != links[j].Overlap {
				return links[i].Overlap > links[j].Overlap
			}
			return links[i].Page < links[j].Page
		})
		if len(links) > topK {
			links = links[:topK]
		}
		out[a] = links
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// ReadPages decodes a YAML mapping of page id to keyword list.
func ReadPages(r io.Reader) (map[string][]string, error) {
	var pages map[string][]string
	if err := yaml.NewDecoder(r).Decode(&pages); err != nil {
		if err == io.EOF {
			return map[string][]string{}, nil
		}
		return nil, fmt.Errorf("parsing pages: %w", err)
	}
	if pages == nil {
		pages = map[string][]string{}
	}
	return pages, nil
}
