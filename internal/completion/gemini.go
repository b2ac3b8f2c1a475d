// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"context"
	"net/url"
	"strings"

	"github.com/pdiddy/keyword-engine/internal/httputil"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini calls the Generative Language generateContent endpoint.
type Gemini struct {
	apiKey string
	model  string
	base   string
	http   *httputil.Client
}

// NewGemini builds a Gemini client.
func NewGemini(cfg types.AIConfig, httpCfg types.HTTPConfig) *Gemini {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-pro"
	}
	base := cfg.BaseURL
	if base == "" {
		base = geminiAPIBase
	}
	return &Gemini{apiKey: cfg.APIKey, model: model, base: strings.TrimRight(base, "/"), http: httputil.NewClient(httpCfg, 0)}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int     `json:"maxOutputTokens"`
		Temperature     float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Complete returns the first part of the first candidate. A response
// without candidates yields an empty string.
func (g *Gemini) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var req geminiRequest
	req.Contents = []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}
	req.GenerationConfig.MaxOutputTokens = maxTokens
	req.GenerationConfig.Temperature = 0.7

	endpoint := g.base + "/" + url.PathEscape(g.model) + ":generateContent?" + url.Values{"key": {g.apiKey}}.Encode()

	var resp geminiResponse
	if err := g.http.PostJSON(ctx, "gemini generate", endpoint, nil, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
