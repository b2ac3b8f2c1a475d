// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "keyword-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SourcesConfig holds settings for the external candidate and search-result sources.
type SourcesConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// SearxNGBaseURL enables real autocomplete suggestions through a SearxNG
	// instance. Empty means synthetic suggestions are used.
	SearxNGBaseURL string `json:"searxng_base_url,omitempty" yaml:"searxng_base_url,omitempty" mapstructure:"searxng_base_url"`

	// GoogleCSEAPIKey and GoogleCSECX enable top results from the Google
	// Custom Search API. Both must be set.
	GoogleCSEAPIKey string `json:"google_cse_api_key,omitempty" yaml:"google_cse_api_key,omitempty" mapstructure:"google_cse_api_key"`
	GoogleCSECX     string `json:"google_cse_cx,omitempty" yaml:"google_cse_cx,omitempty" mapstructure:"google_cse_cx"`

	// RequestsPerSecond limits outgoing requests to the external APIs.
	// Zero disables limiting.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// Provider identifies a text-completion backend.
type Provider string

const (
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenAI     Provider = "openai"
	ProviderPerplexity Provider = "perplexity"
	ProviderOpenRouter Provider = "openrouter"
	ProviderGemini     Provider = "gemini"
	ProviderOllama     Provider = "ollama"
	ProviderStub       Provider = "stub"
)

// AIConfig holds the settings for one Generative AI provider.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint (Ollama host, OpenAI-compatible gateway).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`
}

// CompletionConfig holds settings for the text-completion capability.
type CompletionConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// ResearchProvider is used for keyword expansion; WritingProvider for
	// long-form generation. Either falls back to OpenAI, Ollama, then Stub
	// when the chosen provider is not configured.
	ResearchProvider Provider `json:"research_provider" yaml:"research_provider" mapstructure:"research_provider"`
	WritingProvider  Provider `json:"writing_provider" yaml:"writing_provider" mapstructure:"writing_provider"`

	// Providers holds per-provider model, key and endpoint settings.
	Providers map[Provider]AIConfig `json:"providers" yaml:"providers" mapstructure:"providers"`

	// MaxConcurrent bounds the number of completion calls in flight (default 4).
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent" mapstructure:"max_concurrent"`

	// BreakerFailures opens the circuit after this many consecutive failures.
	// Zero disables the breaker.
	BreakerFailures uint32 `json:"breaker_failures" yaml:"breaker_failures" mapstructure:"breaker_failures"`

	// BreakerOpenTimeout is how long the circuit stays open before probing.
	BreakerOpenTimeout time.Duration `json:"breaker_open_timeout" yaml:"breaker_open_timeout" mapstructure:"breaker_open_timeout"`
}

// EmbeddingConfig holds settings for the embedder.
type EmbeddingConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the model backend: ollama, openai, or hash.
	// hash (or empty) uses the deterministic bag-of-words embedder only.
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the embedding model name.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL is the embedding endpoint host.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey authenticates against OpenAI-compatible endpoints.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// HashDimension is the bucket count of the fallback embedder (default 256).
	HashDimension int `json:"hash_dimension" yaml:"hash_dimension" mapstructure:"hash_dimension"`
}

// ClusterConfig holds settings for the clustering stage.
type ClusterConfig struct {
	// MinGroupSize is the minimum cluster size for density clustering (default 5).
	MinGroupSize int `json:"min_group_size" yaml:"min_group_size" mapstructure:"min_group_size"`

	// DisableDensity forces the hierarchical fallback.
	DisableDensity bool `json:"disable_density" yaml:"disable_density" mapstructure:"disable_density"`
}

// StoreConfig holds settings for the run store.
type StoreConfig struct {
	// DataDir is the directory holding the SQLite database and exports.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	// MaxCandidates caps the number of unique candidates (default 300).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates" mapstructure:"max_candidates"`

	// EnrichLimit is the number of leading records enriched with top results (default 20).
	EnrichLimit int `json:"enrich_limit" yaml:"enrich_limit" mapstructure:"enrich_limit"`

	// EnrichTopN is the number of top results fetched per enriched record (default 10).
	EnrichTopN int `json:"enrich_top_n" yaml:"enrich_top_n" mapstructure:"enrich_top_n"`

	// RunTimeout bounds one pipeline invocation. Zero means no bound.
	RunTimeout time.Duration `json:"run_timeout" yaml:"run_timeout" mapstructure:"run_timeout"`

	Sources    SourcesConfig    `json:"sources" yaml:"sources" mapstructure:"sources"`
	Completion CompletionConfig `json:"completion" yaml:"completion" mapstructure:"completion"`
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding" mapstructure:"embedding"`
	Cluster    ClusterConfig    `json:"cluster" yaml:"cluster" mapstructure:"cluster"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
}

// DefaultPipelineConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultPipelineConfig() PipelineConfig {
	httpCfg := HTTPConfig{Timeout: 30 * time.Second, UserAgent: "keyword-engine/0.1"}
	return PipelineConfig{
		MaxCandidates: 300,
		EnrichLimit:   20,
		EnrichTopN:    10,
		Sources: SourcesConfig{
			HTTPConfig:        httpCfg,
			RequestsPerSecond: 5,
		},
		Completion: CompletionConfig{
			HTTPConfig:         HTTPConfig{Timeout: 120 * time.Second, UserAgent: httpCfg.UserAgent},
			ResearchProvider:   ProviderPerplexity,
			WritingProvider:    ProviderOpenRouter,
			Providers:          map[Provider]AIConfig{},
			MaxConcurrent:      4,
			BreakerFailures:    5,
			BreakerOpenTimeout: 30 * time.Second,
		},
		Embedding: EmbeddingConfig{
			HTTPConfig:    httpCfg,
			Provider:      "hash",
			HashDimension: 256,
		},
		Cluster: ClusterConfig{MinGroupSize: 5},
		Store:   StoreConfig{DataDir: "data"},
	}
}
