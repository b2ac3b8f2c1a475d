// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package completion provides the text-completion capability the pipeline
// consumes: one Completer implementation per provider, selected once from
// configuration, and a guard that bounds concurrency and trips a circuit
// breaker when a provider keeps failing.
package completion

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

// ErrNotConfigured is returned by the stub provider when no real backend
// is available.
var ErrNotConfigured = errors.New("no completion provider configured")

// Completer turns a prompt into text. Implementations may fail with
// transport or provider errors; callers decide how to degrade.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Role selects which configured provider is preferred.
type Role string

const (
	RoleResearch Role = "research"
	RoleWriting  Role = "writing"
)

// Resolve picks the provider for role: the configured choice when it has
// credentials, then OpenAI, then Ollama, then the stub. The result is
// wrapped in a Guard built from cfg.
func Resolve(cfg types.CompletionConfig, role Role, logger *slog.Logger) (Completer, types.Provider) {
	choice := cfg.ResearchProvider
	if role == RoleWriting {
		choice = cfg.WritingProvider
	}

	provider := types.ProviderStub
	var c Completer = Stub{}
	for _, p := range []types.Provider{choice, types.ProviderOpenAI, types.ProviderOllama} {
		if built := build(p, cfg); built != nil {
			provider, c = p, built
			break
		}
	}
	if provider != choice && logger != nil {
		logger.Warn("completion provider not configured, using fallback",
			"role", string(role), "wanted", string(choice), "using", string(provider))
	}
	return NewGuard(c, cfg, logger), provider
}

// build returns a Completer for p, or nil when p lacks the settings it needs.
func build(p types.Provider, cfg types.CompletionConfig) Completer {
	pc, ok := cfg.Providers[p]
	if !ok {
		return nil
	}
	switch p {
	case types.ProviderAnthropic:
		if pc.APIKey == "" {
			return nil
		}
		return NewAnthropic(pc)
	case types.ProviderOpenAI, types.ProviderPerplexity, types.ProviderOpenRouter:
		if pc.APIKey == "" {
			return nil
		}
		return NewOpenAICompatible(p, pc, cfg.HTTPConfig)
	case types.ProviderGemini:
		if pc.APIKey == "" {
			return nil
		}
		return NewGemini(pc, cfg.HTTPConfig)
	case types.ProviderOllama:
		if pc.BaseURL == "" {
			return nil
		}
		return NewOllama(pc, cfg.HTTPConfig)
	default:
		return nil
	}
}

// Stub stands in when no provider is configured. With Text empty it fails
// with ErrNotConfigured so callers degrade instead of parsing filler.
type Stub struct {
	Text string
}

// Complete returns the canned text or ErrNotConfigured.
func (s Stub) Complete(_ context.Context, _ string, _ int) (string, error) {
	if s.Text == "" {
		return "", ErrNotConfigured
	}
	return s.Text, nil
}
