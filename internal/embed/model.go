// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/pdiddy/keyword-engine/internal/httputil"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

var openAIEmbeddingsURL = "https://api.openai.com/v1/embeddings"

// OllamaEmbedder embeds through an Ollama server's /api/embed endpoint.
type OllamaEmbedder struct {
	baseURL string
	model   string
	http    *httputil.Client
	dim     atomic.Int64
}

// NewOllamaEmbedder builds an Ollama embedder. The default model is all-minilm,
// the sentence-transformers MiniLM model packaged for Ollama.
func NewOllamaEmbedder(cfg types.EmbeddingConfig) *OllamaEmbedder {
	model := cfg.Model
	if model == "" {
		model = "all-minilm"
	}
	base := cfg.BaseURL
	if base == "" {
		base = "http://localhost:11434"
	}
	return &OllamaEmbedder{baseURL: strings.TrimRight(base, "/"), model: model, http: httputil.NewClient(cfg.HTTPConfig, 0)}
}

// Dimension is known after the first successful call.
func (o *OllamaEmbedder) Dimension() int { return int(o.dim.Load()) }

// Embed returns L2-normalized vectors.
func (o *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	req := map[string]any{"model": o.model, "input": texts}
	var resp struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	if err := o.http.PostJSON(ctx, "ollama embed", o.baseURL+"/api/embed", nil, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) > 0 {
		o.dim.Store(int64(len(resp.Embeddings[0])))
	}
	return normalizeAll(resp.Embeddings), nil
}

// OpenAIEmbedder embeds through an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	endpoint string
	apiKey   string
	model    string
	http     *httputil.Client
	dim      atomic.Int64
}

// NewOpenAIEmbedder builds an OpenAI-compatible embedder. cfg.BaseURL, when set, is
// the full embeddings URL.
func NewOpenAIEmbedder(cfg types.EmbeddingConfig) *OpenAIEmbedder {
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = openAIEmbeddingsURL
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAIEmbedder{endpoint: endpoint, apiKey: cfg.APIKey, model: model, http: httputil.NewClient(cfg.HTTPConfig, 0)}
}

func (o *OpenAIEmbedder) Dimension() int { return int(o.dim.Load()) }

// Embed returns L2-normalized vectors ordered by the response index field.
func (o *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if o.apiKey == "" {
		return nil, fmt.Errorf("openai embeddings: %w", ErrNoModel)
	}
	req := map[string]any{"model": o.model, "input": texts}
	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}

	var resp struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := o.http.PostJSON(ctx, "openai embeddings", o.endpoint, headers, req, &resp); err != nil {
		return nil, err
	}

	out := make([][]float64, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	if len(out) > 0 {
		o.dim.Store(int64(len(out[0])))
	}
	return normalizeAll(out), nil
}

func normalizeAll(vecs [][]float64) [][]float64 {
	for _, v := range vecs {
		Normalize(v)
	}
	return vecs
}
