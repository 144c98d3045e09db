package embedding

import (
	"context"
	"strings"

	"github.com/medioracle/medirag/pkg/utils"
)

// MockEmbedder produces deterministic embeddings with no external calls.
// Each word of the lowercased text scatters weighted contributions into three
// dimensions derived from its hash, and the accumulated vector is
// L2-normalized. Identical text always yields a bit-identical vector, which
// keeps retrieval reproducible in tests and offline deployments.
type MockEmbedder struct {
	dimensions int
}

// Word contribution weights, strongest at the hash-selected dimension.
const (
	weightPrimary   = 0.6
	weightSecondary = 0.4
	weightTertiary  = 0.2
)

// NewMockEmbedder returns an embedder producing deterministic embeddings of
// the given dimensions (1536 when non-positive).
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns the hash-scatter embedding of text.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		idx := HashWord(word) % e.dimensions
		vec[idx] += weightPrimary
		vec[(idx+1)%e.dimensions] += weightSecondary
		vec[(idx+2)%e.dimensions] += weightTertiary
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch calls Embed for each text.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}

// HashWord returns a deterministic non-negative hash of s.
func HashWord(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
