// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"context"
	"strings"

	"github.com/pdiddy/keyword-engine/internal/httputil"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

// Ollama calls a local Ollama server's /api/generate endpoint.
type Ollama struct {
	baseURL string
	model   string
	http    *httputil.Client
}

// NewOllama builds a client for the host in cfg.BaseURL.
func NewOllama(cfg types.AIConfig, httpCfg types.HTTPConfig) *Ollama {
	model := cfg.Model
	if model == "" {
		model = "llama3.1:8b"
	}
	return &Ollama{baseURL: strings.TrimRight(cfg.BaseURL, "/"), model: model, http: httputil.NewClient(httpCfg, 0)}
}

// Complete runs a non-streaming generation.
func (o *Ollama) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	req := map[string]any{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
	}
	if maxTokens > 0 {
		req["options"] = map[string]any{"num_predict": maxTokens}
	}

	var resp struct {
		Response string `json:"response"`
	}
	if err := o.http.PostJSON(ctx, "ollama generate", o.baseURL+"/api/generate", nil, req, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Response), nil
}
