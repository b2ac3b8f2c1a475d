// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"context"
	"fmt"

	"github.com/pdiddy/keyword-engine/internal/httputil"
	"github.com/pdiddy/keyword-engine/pkg/types"
)

// chatEndpoints are the default chat-completions URLs per provider. Declared
// as a var so tests can substitute an httptest server.
var chatEndpoints = map[types.Provider]string{
	types.ProviderOpenAI:     "https://api.openai.com/v1/chat/completions",
	types.ProviderPerplexity: "https://api.perplexity.ai/chat/completions",
	types.ProviderOpenRouter: "https://openrouter.ai/api/v1/chat/completions",
}

var chatDefaultModels = map[types.Provider]string{
	types.ProviderOpenAI:     "gpt-4o-mini",
	types.ProviderPerplexity: "sonar",
	types.ProviderOpenRouter: "deepseek/deepseek-r1:free",
}

// OpenAICompatible calls any endpoint speaking the OpenAI chat-completions
// shape: OpenAI itself, Perplexity and OpenRouter.
type OpenAICompatible struct {
	provider types.Provider
	endpoint string
	apiKey   string
	model    string
	http     *httputil.Client
}

// NewOpenAICompatible builds a client for provider. cfg.BaseURL overrides
// the provider's default endpoint.
func NewOpenAICompatible(provider types.Provider, cfg types.AIConfig, httpCfg types.HTTPConfig) *OpenAICompatible {
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = chatEndpoints[provider]
	}
	model := cfg.Model
	if model == "" {
		model = chatDefaultModels[provider]
	}
	return &OpenAICompatible{
		provider: provider,
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		model:    model,
		http:     httputil.NewClient(httpCfg, 0),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete posts a single user message and returns the first choice.
func (c *OpenAICompatible) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	req := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var resp chatResponse
	if err := c.http.PostJSON(ctx, string(c.provider)+" chat", c.endpoint, headers, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s chat: empty response", c.provider)
	}
	return resp.Choices[0].Message.Content, nil
}
