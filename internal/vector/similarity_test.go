package vector

import (
	"math"
	"testing"
)

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0.3, 0.7, 0.1},
		{-2, 5, 3.5},
	}
	for _, v := range vectors {
		if got := CosineSimilarity(v, v); math.Abs(got-1.0) > 1e-9 {
			t.Errorf("CosineSimilarity(v, v) = %v, want 1.0", got)
		}
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.2, 0.9, 0.4}
	b := []float32{0.7, 0.1, 0.5}
	if CosineSimilarity(a, b) != CosineSimilarity(b, a) {
		t.Error("cosine similarity is not symmetric")
	}
}

func TestCosineSimilarity_ZeroMagnitude(t *testing.T) {
	zero := []float32{0, 0, 0}
	v := []float32{1, 2, 3}
	if got := CosineSimilarity(zero, v); got != 0 {
		t.Errorf("zero-magnitude similarity = %v, want 0", got)
	}
	if got := CosineSimilarity(v, zero); got != 0 {
		t.Errorf("zero-magnitude similarity = %v, want 0", got)
	}
}

func TestCosineSimilarity_LengthMismatch(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Errorf("mismatched lengths = %v, want 0", got)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal similarity = %v, want 0", got)
	}
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{-1, 0}); math.Abs(got+1) > 1e-9 {
		t.Errorf("opposite similarity = %v, want -1", got)
	}
}
