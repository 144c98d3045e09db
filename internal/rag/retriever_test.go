package rag

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/medioracle/medirag/internal/keyword"
	"github.com/medioracle/medirag/internal/models"
)

// stubKeywords is an in-memory KeywordIndex double for exercising the hybrid
// retrieval paths without a real Bleve index.
type stubKeywords struct {
	results []*keyword.KeywordResult
	err     error
	indexed []string
	cleared bool
	closed  bool
}

func (s *stubKeywords) Index(_ context.Context, id, _, _ string) error {
	s.indexed = append(s.indexed, id)
	return nil
}

func (s *stubKeywords) Search(_ context.Context, _ string, _ int, _ *keyword.SearchOptions) ([]*keyword.KeywordResult, error) {
	return s.results, s.err
}

func (s *stubKeywords) Clear() error {
	s.cleared = true
	s.indexed = nil
	return nil
}

func (s *stubKeywords) DocCount() (uint64, error) {
	return uint64(len(s.indexed)), nil
}

func (s *stubKeywords) Close() error {
	s.closed = true
	return nil
}

func TestFuseResults(t *testing.T) {
	vec := []models.SearchResult{
		{ID: 0, Content: "alpha", Metadata: models.ChunkMetadata{Source: "a.md"}, Similarity: 0.8},
		{ID: 1, Content: "beta", Metadata: models.ChunkMetadata{Source: "b.md"}, Similarity: 0.5},
	}
	kw := []*keyword.KeywordResult{
		{ID: "1", Score: 10.0, Content: "beta", Source: "b.md"},
		{ID: "7", Score: 5.0, Content: "gamma stored", Source: "kw.md"},
	}

	fused := fuseResults(vec, kw, 5)
	if len(fused) != 3 {
		t.Fatalf("fused %d results, want 3", len(fused))
	}

	// ID 1 appears in both rankings: 0.7*0.5 + 0.3*(10/10) = 0.65.
	// ID 0 is vector-only: 0.7*0.8 = 0.56.
	// ID 7 is keyword-only: 0.3*(5/10) = 0.15.
	wantIDs := []int{1, 0, 7}
	wantScores := []float64{0.65, 0.56, 0.15}
	for i, r := range fused {
		if r.ID != wantIDs[i] {
			t.Errorf("position %d: ID = %d, want %d", i, r.ID, wantIDs[i])
		}
		if math.Abs(r.Similarity-wantScores[i]) > 1e-9 {
			t.Errorf("position %d: similarity = %v, want %v", i, r.Similarity, wantScores[i])
		}
	}

	if fused[2].Content != "gamma stored" || fused[2].Metadata.Source != "kw.md" {
		t.Errorf("keyword-only hit lost stored fields: %+v", fused[2])
	}
}

func TestFuseResults_TruncatesToTopK(t *testing.T) {
	vec := []models.SearchResult{
		{ID: 0, Similarity: 0.9},
		{ID: 1, Similarity: 0.6},
	}
	kw := []*keyword.KeywordResult{{ID: "2", Score: 4.0, Content: "c", Source: "s"}}

	fused := fuseResults(vec, kw, 2)
	if len(fused) != 2 {
		t.Fatalf("fused %d results, want 2", len(fused))
	}
	if fused[0].ID != 0 || fused[1].ID != 1 {
		t.Errorf("order = [%d %d], want [0 1]", fused[0].ID, fused[1].ID)
	}
}

func TestFuseResults_SkipsUnparseableKeywordID(t *testing.T) {
	kw := []*keyword.KeywordResult{{ID: "chunk-9", Score: 3.0, Content: "c", Source: "s"}}

	fused := fuseResults(nil, kw, 5)
	if len(fused) != 0 {
		t.Errorf("fused %d results from unparseable id, want 0", len(fused))
	}
}

func TestRetrieve_KeywordFailureFallsBackToVector(t *testing.T) {
	stub := &stubKeywords{err: errors.New("index closed")}
	e := newTestEngine(t, WithKeywordIndex(stub))
	mustIngest(t, e, "Anemia lowers the red blood cell count and causes fatigue.", "anemia.md")

	results, err := e.retrieve(context.Background(), "the causes of anemia")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected vector results despite keyword failure")
	}
}

func TestRetrieve_MergesKeywordOnlyHits(t *testing.T) {
	stub := &stubKeywords{results: []*keyword.KeywordResult{
		{ID: "5", Score: 8.0, Content: "Beta blockers slow the heart rate.", Source: "cardio.md"},
	}}
	e := newTestEngine(t, WithKeywordIndex(stub))
	mustIngest(t, e, "Anemia lowers the red blood cell count and causes fatigue.", "anemia.md")

	results, err := e.retrieve(context.Background(), "the causes of anemia")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}

	var kwOnly *models.SearchResult
	for i := range results {
		if results[i].ID == 5 {
			kwOnly = &results[i]
		}
	}
	if kwOnly == nil {
		t.Fatal("keyword-only hit missing from fused results")
	}
	if kwOnly.Content != "Beta blockers slow the heart rate." || kwOnly.Metadata.Source != "cardio.md" {
		t.Errorf("stored fields not carried over: %+v", *kwOnly)
	}
	if math.Abs(kwOnly.Similarity-0.3) > 1e-9 {
		t.Errorf("keyword-only similarity = %v, want 0.3", kwOnly.Similarity)
	}
}

func TestClose_ClosesKeywordIndex(t *testing.T) {
	stub := &stubKeywords{}
	e := newTestEngine(t, WithKeywordIndex(stub))

	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !stub.closed {
		t.Error("keyword index not closed")
	}
}
