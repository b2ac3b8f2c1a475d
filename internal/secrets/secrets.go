// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and endpoints from a directory of plain-text
// files. Each file is one secret: the filename is the key name and the
// trimmed contents are the value.
//
// Recognized keys: anthropic-api-key, openai-api-key, perplexity-api-key,
// openrouter-api-key, gemini-api-key, google-cse-api-key, google-cse-cx,
// searxng-url, ollama-host.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

// Set maps secret names to values.
type Set map[string]string

// Load reads all files in dir and returns their trimmed contents by filename.
// A missing directory is not an error; Load returns an empty set. Unreadable
// files produce a warning on w and are skipped.
func Load(dir string, w io.Writer) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := make(Set)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(w, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}
	return set, nil
}

// providerKeys maps completion providers to the secret holding their API key.
var providerKeys = map[types.Provider]string{
	types.ProviderAnthropic:  "anthropic-api-key",
	types.ProviderOpenAI:     "openai-api-key",
	types.ProviderPerplexity: "perplexity-api-key",
	types.ProviderOpenRouter: "openrouter-api-key",
	types.ProviderGemini:     "gemini-api-key",
}

// Apply fills empty credential and endpoint fields of cfg from the set.
// Values already present in cfg (from the config file, environment, or
// flags) take precedence.
func (s Set) Apply(cfg *types.PipelineConfig) {
	fill(&cfg.Sources.SearxNGBaseURL, s["searxng-url"])
	fill(&cfg.Sources.GoogleCSEAPIKey, s["google-cse-api-key"])
	fill(&cfg.Sources.GoogleCSECX, s["google-cse-cx"])

	if cfg.Completion.Providers == nil {
		cfg.Completion.Providers = map[types.Provider]types.AIConfig{}
	}
	for provider, key := range providerKeys {
		value, ok := s[key]
		if !ok {
			continue
		}
		pc := cfg.Completion.Providers[provider]
		fill(&pc.APIKey, value)
		cfg.Completion.Providers[provider] = pc
	}
	if host, ok := s["ollama-host"]; ok {
		pc := cfg.Completion.Providers[types.ProviderOllama]
		fill(&pc.BaseURL, host)
		cfg.Completion.Providers[types.ProviderOllama] = pc
	}

	if cfg.Embedding.Provider == "openai" {
		fill(&cfg.Embedding.APIKey, s["openai-api-key"])
	}
}

func fill(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}
