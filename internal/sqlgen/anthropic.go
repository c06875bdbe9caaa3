package sqlgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	ProviderAnthropic = "anthropic"
	anthropicVersion  = "2023-06-01"
)

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	apiKey    string
	model     string
	url       string
	maxTokens int
	client    *http.Client
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *AnthropicClient) Name() string { return ProviderAnthropic }

// Complete sends one user turn and joins the text blocks of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("anthropic API key not set")
	}
	body := anthropicRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var resp anthropicResponse
	if err := postJSON(ctx, c.client, c.url, headers, body, &resp); err != nil {
		return "", fmt.Errorf("anthropic API: %w", err)
	}

	texts := make([]string, 0, len(resp.Content))
	for _, block := range resp.Content {
		if block.Type == "text" {
			texts = append(texts, block.Text)
		}
	}
	return strings.Join(texts, "\n"), nil
}
