// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the keyword-engine pipeline:
// candidates proposed by sources, the records built from them after
// deduplication, external search results attached during enrichment, and the
// clusters the records are grouped into.
package types

// SearchResult is one ranked result returned by an external search API for a
// keyword. Records carry up to N of these after enrichment.
type SearchResult struct {
	// Title is the result title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// URL is the landing page of the result.
	URL string `json:"url" yaml:"url"`

	// Snippet is the short description shown under the result (optional).
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`

	// Rank is the 1-based position on the results page. Zero means unknown.
	Rank int `json:"rank,omitempty" yaml:"rank,omitempty"`

	// Source identifies which backend produced the result (e.g. "google_cse").
	Source string `json:"source" yaml:"source"`
}
