package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jordan/curriculum-builder/internal/config"
	"github.com/jordan/curriculum-builder/internal/llm"
	"github.com/jordan/curriculum-builder/internal/retry"
)

// batchCallTimeout bounds a single batch-embedding request.
const batchCallTimeout = 60 * time.Second

// GeminiProvider embeds content via the Gemini batch embedding API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	policy retry.Policy
}

// NewGeminiProvider creates a Gemini-backed embedding provider.
func NewGeminiProvider(ctx context.Context, cfg config.ProviderConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	policy := retry.DefaultPolicy()
	policy.Retryable = llm.IsTransient

	return &GeminiProvider{client: client, model: cfg.Model, policy: policy}, nil
}

// Embed embeds all items in fixed-size batches. Transient upstream
// failures are retried with exponential backoff; a permanent failure
// fails the whole call.
func (p *GeminiProvider) Embed(ctx context.Context, items []Input, onBatch func(done int)) ([]Result, error) {
	results := make([]Result, 0, len(items))

	for start := 0; start < len(items); start += BatchSize {
		end := start + BatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		vectors, err := p.embedBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d failed: %w", start, end-1, err)
		}
		results = append(results, vectors...)

		if onBatch != nil {
			onBatch(end)
		}
	}
	return results, nil
}

// Model names the configured embedding model.
func (p *GeminiProvider) Model() string { return p.model }

// Close releases the underlying client.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func (p *GeminiProvider) embedBatch(ctx context.Context, batch []Input) ([]Result, error) {
	var resp *genai.BatchEmbedContentsResponse

	err := retry.Do(ctx, p.policy, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, batchCallTimeout)
		defer cancel()

		em := p.client.EmbeddingModel(p.model)
		req := em.NewBatch()
		for _, item := range batch {
			req = req.AddContent(genai.Text(item.Text))
		}

		var callErr error
		resp, callErr = em.BatchEmbedContents(callCtx, req)
		if callErr != nil {
			return llm.ClassifyError("embed", callErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(batch) {
		return nil, &llm.TransientError{
			Op:    "embed",
			Cause: fmt.Errorf("expected %d embeddings, got %d", len(batch), len(resp.Embeddings)),
		}
	}

	results := make([]Result, 0, len(batch))
	for i, emb := range resp.Embeddings {
		results = append(results, Result{ID: batch[i].ID, Vector: emb.Values})
	}
	return results, nil
}
