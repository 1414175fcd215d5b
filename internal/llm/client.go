package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jordan/curriculum-builder/internal/config"
)

// callTimeout bounds a single provider call. Exceeding it is a transient
// failure handled by the caller's retry policy, not a job failure.
const callTimeout = 120 * time.Second

// Client is an abstraction over text-generation providers. Raw text is
// the wire representation at this boundary only; callers parse it into
// typed artifacts immediately.
type Client interface {
	// GenerateJSON produces a JSON response for the prompt, with
	// markdown fencing already stripped.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	// Name identifies the backend for stage-qualified error messages.
	Name() string
	// Close releases any resources held by the client.
	Close() error
}

// NewClient creates a generation client for the configured backend.
func NewClient(ctx context.Context, backend string, cfg config.ProviderConfig) (Client, error) {
	switch backend {
	case "openai":
		return NewOpenAIClient(cfg), nil
	case "gemini", "":
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown generation backend %q", backend)
	}
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, cfg config.ProviderConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, &PermanentError{Op: "client init", Cause: fmt.Errorf("API key is required")}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: cfg.Model}, nil
}

// GenerateJSON generates a JSON response for the prompt.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.1) // Low temperature for consistent output
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", ClassifyError("generate", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", &TransientError{Op: "generate", Cause: err}
	}

	return CleanJSONBlock(text), nil
}

// Name identifies the backend.
func (c *GeminiClient) Name() string { return "gemini" }

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
