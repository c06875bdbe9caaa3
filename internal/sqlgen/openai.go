package sqlgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const ProviderOpenAI = "openai"

// OpenAIClient calls the OpenAI Chat Completions API.
type OpenAIClient struct {
	apiKey    string
	model     string
	url       string
	maxTokens int
	client    *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Name() string { return ProviderOpenAI }

// Complete sends the system and user messages and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("openai API key not set")
	}
	body := chatRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var resp chatResponse
	if err := postJSON(ctx, c.client, c.url, headers, body, &resp); err != nil {
		return "", fmt.Errorf("openai API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
