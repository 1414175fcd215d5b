package llm

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/jordan/curriculum-builder/internal/config"
)

// OpenAIClient implements Client against any OpenAI-compatible
// chat-completions endpoint (OpenAI, OpenRouter, local gateways).
type OpenAIClient struct {
	http  *resty.Client
	model string
}

// NewOpenAIClient creates a client for an OpenAI-compatible backend.
func NewOpenAIClient(cfg config.ProviderConfig) *OpenAIClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(callTimeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &OpenAIClient{http: client, model: cfg.Model}
}

// GenerateJSON generates a JSON response for the prompt.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature":     0.1,
		"response_format": map[string]string{"type": "json_object"},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", ClassifyError("generate", err)
	}
	if resp.IsError() {
		return "", ClassifyStatusCode("generate", resp.StatusCode(),
			fmt.Errorf("chat completion returned %s: %s", resp.Status(), resp.String()))
	}

	content := gjson.GetBytes(resp.Body(), "choices.0.message.content")
	if !content.Exists() || content.String() == "" {
		return "", &TransientError{Op: "generate", Cause: fmt.Errorf("no message content in response")}
	}

	return CleanJSONBlock(content.String()), nil
}

// Name identifies the backend.
func (c *OpenAIClient) Name() string { return "openai" }

// Close releases resources held by the client.
func (c *OpenAIClient) Close() error { return nil }
