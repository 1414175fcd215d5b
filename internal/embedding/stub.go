package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
)

// StubDimensions is the dimensionality of stub vectors.
const StubDimensions = 384

// StubModel is the model name recorded for stub-derived embeddings.
const StubModel = "stub-hash-384"

// StubProvider derives vectors purely from a hash of the input text.
// Identical text always yields a bit-identical vector.
type StubProvider struct{}

// NewStubProvider creates the deterministic offline provider.
func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

// Embed embeds all items with no external calls.
func (p *StubProvider) Embed(_ context.Context, items []Input, onBatch func(done int)) ([]Result, error) {
	results := make([]Result, 0, len(items))
	for i, item := range items {
		results = append(results, Result{ID: item.ID, Vector: HashVector(item.Text)})
		if onBatch != nil && ((i+1)%BatchSize == 0 || i == len(items)-1) {
			onBatch(i + 1)
		}
	}
	return results, nil
}

// Model names the stub model.
func (p *StubProvider) Model() string { return StubModel }

// HashVector expands a SHA-256 digest of text into a 384-dimension unit
// range vector. Empty text yields the zero vector.
func HashVector(text string) []float32 {
	vector := make([]float32, StubDimensions)
	if text == "" {
		return vector
	}

	seed := sha256.Sum256([]byte(text))
	var block [32]byte
	copy(block[:], seed[:])

	// Each digest provides 8 values of 4 bytes; re-hash the previous
	// block with a counter suffix until the vector is full.
	counter := uint32(0)
	for i := 0; i < StubDimensions; {
		for j := 0; j+4 <= len(block) && i < StubDimensions; j += 4 {
			raw := binary.BigEndian.Uint32(block[j : j+4])
			// Map to [-1, 1]
			vector[i] = float32(raw)/float32(1<<31) - 1
			i++
		}
		counter++
		next := sha256.Sum256(append(block[:], byte(counter), byte(counter>>8), byte(counter>>16), byte(counter>>24)))
		block = next
	}
	return vector
}
