package embedding

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// Fallback wraps a primary embedder with the deterministic mock. The first
// primary failure latches the fallback into mock mode so index contents stay
// internally consistent: mixing real and hash vectors in one index would make
// similarities meaningless.
type Fallback struct {
	primary  Embedder
	mock     *MockEmbedder
	degraded atomic.Bool
	logger   *zap.Logger
}

// NewFallback wraps primary with a mock of the same dimensions. logger may be
// nil.
func NewFallback(primary Embedder, logger *zap.Logger) *Fallback {
	return &Fallback{
		primary: primary,
		mock:    NewMockEmbedder(primary.Dimensions()),
		logger:  logger,
	}
}

// Embed uses the primary embedder until it fails, then the mock.
func (f *Fallback) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.degraded.Load() {
		return f.mock.Embed(ctx, text)
	}
	vec, err := f.primary.Embed(ctx, text)
	if err != nil {
		f.degrade(err)
		return f.mock.Embed(ctx, text)
	}
	return vec, nil
}

// EmbedBatch uses the primary embedder until it fails, then the mock.
func (f *Fallback) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.degraded.Load() {
		return f.mock.EmbedBatch(ctx, texts)
	}
	vecs, err := f.primary.EmbedBatch(ctx, texts)
	if err != nil {
		f.degrade(err)
		return f.mock.EmbedBatch(ctx, texts)
	}
	return vecs, nil
}

func (f *Fallback) degrade(err error) {
	if f.degraded.Swap(true) {
		return
	}
	if f.logger != nil {
		f.logger.Warn("embedding service unavailable, switching to deterministic fallback", zap.Error(err))
	}
}

// Degraded reports whether the fallback has latched into mock mode.
func (f *Fallback) Degraded() bool {
	return f.degraded.Load()
}

// Dimensions returns the embedding dimension.
func (f *Fallback) Dimensions() int {
	return f.primary.Dimensions()
}

// Close closes the primary embedder.
func (f *Fallback) Close() error {
	return f.primary.Close()
}
