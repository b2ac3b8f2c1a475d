// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// CandidateSource names the strategy that proposed a candidate.
type CandidateSource string

const (
	SourceRule     CandidateSource = "rule"
	SourceModel    CandidateSource = "model"
	SourceExternal CandidateSource = "external"
)

// Intent is the search intent a candidate is believed to carry.
type Intent string

const (
	IntentInformational Intent = "informational"
	IntentCommercial    Intent = "commercial"
	IntentNavigational  Intent = "navigational"
	IntentTransactional Intent = "transactional"
)

// Candidate is a raw, unscored keyword proposed by a source for a seed.
// Candidates are treated as immutable once created.
type Candidate struct {
	// Term is the keyword text. Never empty after trimming.
	Term string `json:"term" yaml:"term"`

	// Source identifies the strategy that produced the term.
	Source CandidateSource `json:"source" yaml:"source"`

	// Intent is optional; empty means unknown.
	Intent Intent `json:"intent,omitempty" yaml:"intent,omitempty"`

	// Modifiers lists the expansion modifiers applied to the seed, in order.
	Modifiers []string `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
}

// Key returns the normalization key used for deduplication: the term
// lower-cased and trimmed.
func (c Candidate) Key() string {
	return NormalizeTerm(c.Term)
}

// NormalizeTerm lower-cases and trims a term.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Metrics holds optional demand and competition signals for a keyword.
// A nil field means unknown, not zero.
type Metrics struct {
	// Volume is the monthly search volume.
	Volume *int `json:"volume,omitempty" yaml:"volume,omitempty"`

	// Difficulty is the keyword difficulty in [0,100].
	Difficulty *float64 `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`

	// CPC is the cost per click. Carried for consumers; not scored.
	CPC *float64 `json:"cpc,omitempty" yaml:"cpc,omitempty"`

	// Trend is a trend score in [0,1].
	Trend *float64 `json:"trend,omitempty" yaml:"trend,omitempty"`
}

// Record is the unit the pipeline outputs: one per unique candidate.
// ClusterID and Opportunity are filled in place by later stages; TopResults
// is filled only for the enriched subset.
type Record struct {
	Candidate   Candidate      `json:"candidate" yaml:"candidate"`
	Metrics     Metrics        `json:"metrics" yaml:"metrics"`
	TopResults  []SearchResult `json:"top_results" yaml:"top_results"`
	ClusterID   string         `json:"cluster_id,omitempty" yaml:"cluster_id,omitempty"`
	Opportunity *float64       `json:"opportunity,omitempty" yaml:"opportunity,omitempty"`
}

// NewRecord builds a record for c with empty metrics and results.
func NewRecord(c Candidate) Record {
	return Record{Candidate: c, TopResults: []SearchResult{}}
}

// Cluster is a group of semantically related records sharing a centroid.
// Clusters are derived and rebuilt on every run.
type Cluster struct {
	ID       string    `json:"id" yaml:"id"`
	Label    string    `json:"label" yaml:"label"`
	Records  []Record  `json:"keywords" yaml:"keywords"`
	Centroid []float64 `json:"centroid,omitempty" yaml:"centroid,omitempty"`
}
