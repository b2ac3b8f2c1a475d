// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"log/slog"

	"github.com/pdiddy/keyword-engine/internal/cluster"
	"github.com/pdiddy/keyword-engine/internal/completion"
	"github.com/pdiddy/keyword-engine/internal/embed"
	"github.com/pdiddy/keyword-engine/internal/metrics"
	"github.com/pdiddy/keyword-engine/internal/sources"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

// NewDeps wires the production collaborators for cfg: the Google-like
// search backend for external candidates and enrichment, the research
// completion provider for model expansion, and the configured embedder.
// An unknown embedding provider is logged and replaced by the hashed
// embedder.
func NewDeps(cfg types.PipelineConfig, logger *slog.Logger, m *metrics.Pipeline) Deps {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	backend := sources.NewGoogleLike(cfg.Sources)
	completer, provider := completion.Resolve(cfg.Completion, completion.RoleResearch, logger)
	logger.Debug("research provider resolved", "provider", string(provider))

	embedder, err := embed.New(cfg.Embedding, logger)
	if err != nil {
		logger.Warn("embedding provider unavailable, using hashed embedder", "error", err)
	}

	return Deps{
		Rules:     sources.RuleSource{},
		Model:     sources.ModelSource{Completer: completer},
		External:  sources.ExternalSource{Backend: backend, Logger: logger},
		Search:    backend,
		Embedder:  embedder,
		Clusterer: cluster.Engine{Density: !cfg.Cluster.DisableDensity},
		Logger:    logger,
		Metrics:   m,
	}
}
