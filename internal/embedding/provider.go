// Package embedding converts content text into fixed-dimension vectors.
// A real provider is used when a credential is configured; otherwise a
// deterministic hash-derived stub keeps clustering and tests stable with
// zero network access.
package embedding

import (
	"context"

	"github.com/jordan/curriculum-builder/internal/config"
)

// BatchSize is the fixed request group size used against real providers
// to respect upstream rate limits.
const BatchSize = 16

// Input is one item to embed. Text may be empty; empty text produces a
// zero-information vector, not an error.
type Input struct {
	ID   string
	Text string
}

// Result pairs an item with its vector.
type Result struct {
	ID     string
	Vector []float32
}

// Provider converts item text into vectors. Implementations are
// read-only with respect to persisted state; callers own the returned
// vectors.
type Provider interface {
	// Embed embeds all items, batching internally. OnBatch, when
	// non-nil, is invoked after each completed batch with the number of
	// items done so far, so the caller can publish progress.
	Embed(ctx context.Context, items []Input, onBatch func(done int)) ([]Result, error)
	// Model names the embedding model for persistence bookkeeping.
	Model() string
}

// NewProvider selects the Gemini provider when a credential is
// configured and the deterministic stub otherwise.
func NewProvider(ctx context.Context, cfg config.ProviderConfig) (Provider, error) {
	if !cfg.Configured() {
		return NewStubProvider(), nil
	}
	return NewGeminiProvider(ctx, cfg)
}
