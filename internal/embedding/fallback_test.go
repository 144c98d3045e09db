package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type failingEmbedder struct {
	dims  int
	calls int
}

func (f *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

func (f *failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

func (f *failingEmbedder) Dimensions() int { return f.dims }
func (f *failingEmbedder) Close() error    { return nil }

func TestFallback_DegradesOnPrimaryFailure(t *testing.T) {
	primary := &failingEmbedder{dims: 8}
	f := NewFallback(primary, zap.NewNop())

	vec, err := f.Embed(context.Background(), "fever")
	if err != nil {
		t.Fatalf("fallback should absorb primary failure: %v", err)
	}
	if len(vec) != 8 {
		t.Fatalf("dimensions = %d, want 8", len(vec))
	}
	if !f.Degraded() {
		t.Error("expected degraded state after primary failure")
	}
	if !IsMock(f) {
		t.Error("degraded fallback should report as mock")
	}
}

func TestFallback_StaysDegraded(t *testing.T) {
	primary := &failingEmbedder{dims: 4}
	f := NewFallback(primary, zap.NewNop())

	ctx := context.Background()
	if _, err := f.Embed(ctx, "fever"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Embed(ctx, "cough"); err != nil {
		t.Fatal(err)
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times after degradation, want 1", primary.calls)
	}
}

func TestFallback_MatchesMockVectors(t *testing.T) {
	primary := &failingEmbedder{dims: 16}
	f := NewFallback(primary, zap.NewNop())
	mock := NewMockEmbedder(16)

	ctx := context.Background()
	got, err := f.Embed(ctx, "patient has a high fever")
	if err != nil {
		t.Fatal(err)
	}
	want, err := mock.Embed(ctx, "patient has a high fever")
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("vector diverges from mock at %d: %v vs %v", i, got[i], want[i])
		}
	}
}

func TestFallback_HealthyPrimaryNotMock(t *testing.T) {
	f := NewFallback(NewMockEmbedder(4), zap.NewNop())
	// The wrapper itself has not degraded, even though the stand-in
	// primary happens to be deterministic.
	if f.Degraded() {
		t.Error("fresh fallback should not be degraded")
	}
}
