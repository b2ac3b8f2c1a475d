// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BriefSection is one heading of a content brief outline.
type BriefSection struct {
	Heading        string   `json:"heading" yaml:"heading"`
	Description    string   `json:"description" yaml:"description"`
	TargetKeywords []string `json:"target_keywords" yaml:"target_keywords"`
}

// Brief is a content plan for one topic: working title, H1, outline and
// the questions the page should answer.
type Brief struct {
	Topic                   string         `json:"topic" yaml:"topic"`
	Title                   string         `json:"title" yaml:"title"`
	H1                      string         `json:"h1" yaml:"h1"`
	Outline                 []BriefSection `json:"outline" yaml:"outline"`
	FAQs                    []string       `json:"faqs" yaml:"faqs"`
	SchemaSuggestions       []string       `json:"schema_suggestions" yaml:"schema_suggestions"`
	InternalLinkSuggestions []string       `json:"internal_link_suggestions" yaml:"internal_link_suggestions"`
}

// OptimizationScore rates how well a text covers its target entities.
// Value is in [0,1].
type OptimizationScore struct {
	Value   float64  `json:"value" yaml:"value"`
	Covered []string `json:"covered" yaml:"covered"`
	Missing []string `json:"missing" yaml:"missing"`
}

// Article is a generated long-form text with its optimization score and
// social post angles.
type Article struct {
	Title        string              `json:"title" yaml:"title"`
	Markdown     string              `json:"markdown" yaml:"markdown"`
	Score        OptimizationScore   `json:"score" yaml:"score"`
	Microcontent map[string][]string `json:"microcontent" yaml:"microcontent"`
}
