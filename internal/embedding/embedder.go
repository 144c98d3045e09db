// Package embedding provides text embedding via an OpenAI-compatible API with
// a deterministic hash-based fallback.
package embedding

import "context"

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// IsMock reports whether e currently produces hash-based fallback embeddings.
// Retrieval uses this to lower the similarity threshold, since hash embeddings
// are low fidelity and rarely clear the real-embedding bar.
func IsMock(e Embedder) bool {
	switch v := e.(type) {
	case *MockEmbedder:
		return true
	case *Fallback:
		return v.Degraded()
	default:
		return false
	}
}
