// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pdiddy/keyword-engine/pkg/types"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// Anthropic completes prompts with the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic builds a client for cfg. Extra options are appended after the
// API key and base URL, so tests can point the client at a local server.
func NewAnthropic(cfg types.AIConfig, opts ...option.RequestOption) *Anthropic {
	all := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		all = append(all, option.WithBaseURL(cfg.BaseURL))
	}
	all = append(all, opts...)

	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	return &Anthropic{client: anthropic.NewClient(all...), model: model}
}

// Complete sends prompt as a single user message and concatenates the text blocks.
func (a *Anthropic) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
