// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/keyword-engine/internal/httputil"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

// googleCSEBase is the Google Custom Search endpoint. Declared as a var so
// tests can substitute an httptest server.
var googleCSEBase = "https://www.googleapis.com/customsearch/v1"

// now is the clock used for the year modifier; tests pin it.
var now = time.Now

const (
	maxAutocomplete = 20
	maxCSEResults   = 10
	googleLikeName  = "google_like"
)

var (
	autocompleteModifiers = []string{
		"best", "top", "cheap", "near me", "for beginners", "vs", "review",
		"", // replaced with the current year
		"how to", "guide", "comparison", "alternatives", "pros and cons",
	}
	questionWords = []string{
		"What is", "How does", "Is it worth", "How much", "How long", "Which is better",
		"Can you", "Why is", "When should", "Where to",
	}
	relatedSuffixes = []string{
		"alternatives", "vs competitors", "pricing", "features", "problems", "benefits",
	}
)

// GoogleLike is a SearchBackend that uses SearxNG for autocomplete and the
// Google Custom Search API for top results when configured, and synthetic
// patterns otherwise. People-also-ask and related terms are always
// synthesized; no compliant API for them is wired.
type GoogleLike struct {
	cfg  types.SourcesConfig
	http *httputil.Client
}

// NewGoogleLike builds the backend from cfg.
func NewGoogleLike(cfg types.SourcesConfig) *GoogleLike {
	return &GoogleLike{cfg: cfg, http: httputil.NewClient(cfg.HTTPConfig, cfg.RequestsPerSecond)}
}

// Name returns the backend identifier.
func (g *GoogleLike) Name() string { return googleLikeName }

// Autocomplete returns up to 20 SearxNG suggestions, or seeded modifier
// variations when no SearxNG instance is configured.
func (g *GoogleLike) Autocomplete(ctx context.Context, seed string) ([]types.Candidate, error) {
	if g.cfg.SearxNGBaseURL == "" {
		mods := make([]string, len(autocompleteModifiers))
		copy(mods, autocompleteModifiers)
		for i, m := range mods {
			if m == "" {
				mods[i] = strconv.Itoa(now().Year())
			}
		}
		return expand(seed, mods, types.SourceExternal), nil
	}

	endpoint := strings.TrimRight(g.cfg.SearxNGBaseURL, "/") + "/autocomplete?" + url.Values{"q": {seed}}.Encode()
	var raw []any
	if err := g.http.GetJSON(ctx, "searxng autocomplete", endpoint, nil, &raw); err != nil {
		return nil, err
	}

	var out []types.Candidate
	for _, s := range suggestionStrings(raw) {
		if len(out) == maxAutocomplete {
			break
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, types.Candidate{Term: strings.TrimSpace(s), Source: types.SourceExternal})
	}
	return out, nil
}

// suggestionStrings accepts both a flat list of strings and the OpenSearch
// shape ["query", ["s1", "s2", ...]].
func suggestionStrings(raw []any) []string {
	var out []string
	for i, v := range raw {
		switch x := v.(type) {
		case string:
			if i == 0 && len(raw) == 2 {
				if _, nested := raw[1].([]any); nested {
					continue
				}
			}
			out = append(out, x)
		case []any:
			for _, n := range x {
				if s, ok := n.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// PeopleAlsoAsk synthesizes question-style candidates.
func (g *GoogleLike) PeopleAlsoAsk(_ context.Context, seed string) ([]types.Candidate, error) {
	seed = strings.TrimSpace(seed)
	out := make([]types.Candidate, 0, len(questionWords))
	for _, qw := range questionWords {
		out = append(out, types.Candidate{
			Term:   qw + " " + seed + "?",
			Source: types.SourceExternal,
			Intent: types.IntentInformational,
		})
	}
	return out, nil
}

// Related synthesizes related-term candidates.
func (g *GoogleLike) Related(_ context.Context, seed string) ([]types.Candidate, error) {
	base := strings.TrimSpace(seed)
	out := make([]types.Candidate, 0, len(relatedSuffixes))
	for _, suffix := range relatedSuffixes {
		out = append(out, types.Candidate{Term: base + " " + suffix, Source: types.SourceExternal})
	}
	return out, nil
}

// TopResults queries Google Custom Search for up to min(topN, 10) results.
// Without an API key and engine id it returns no results.
func (g *GoogleLike) TopResults(ctx context.Context, query string, topN int) ([]types.SearchResult, error) {
	if g.cfg.GoogleCSEAPIKey == "" || g.cfg.GoogleCSECX == "" {
		return []types.SearchResult{}, nil
	}
	if topN <= 0 || topN > maxCSEResults {
		topN = maxCSEResults
	}

	params := url.Values{
		"key": {g.cfg.GoogleCSEAPIKey},
		"cx":  {g.cfg.GoogleCSECX},
		"q":   {query},
		"num": {strconv.Itoa(topN)},
	}
	var resp cseResponse
	if err := g.http.GetJSON(ctx, "google cse", googleCSEBase+"?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(resp.Items))
	for i, item := range resp.Items {
		results = append(results, types.SearchResult{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
			Rank:    i + 1,
			Source:  "google_cse",
		})
	}
	return results, nil
}

// Google Custom Search JSON structures.
type cseResponse struct {
	Items []cseItem `json:"items"`
}

type cseItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}
