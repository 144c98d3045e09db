package vector

import (
	"fmt"
	"sort"
	"sync"

	"github.com/medioracle/medirag/internal/models"
	"github.com/medioracle/medirag/pkg/utils"
)

// MemoryIndex is a brute-force in-memory index. Linear scan is adequate for
// the small corpora this engine targets, and it keeps ranking exact.
//
// Search policy: results at or above the caller's threshold are returned
// first, ranked by similarity. When none qualify, the top topK results are
// returned anyway; when some qualify but fewer than topK, the remainder is
// backfilled with the next-best results. Any result surfaced from below the
// threshold has its displayed similarity floored to minVisible.
type MemoryIndex struct {
	dimensions int
	minVisible float64

	mu     sync.RWMutex
	chunks []models.Chunk
}

// NewMemoryIndex creates an empty index for vectors of the given dimension.
// minVisible floors the displayed similarity of below-threshold results so
// callers never render a 0% match.
func NewMemoryIndex(dimensions int, minVisible float64) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	if minVisible < 0 {
		minVisible = 0
	}
	return &MemoryIndex{
		dimensions: dimensions,
		minVisible: minVisible,
	}, nil
}

var _ Index = (*MemoryIndex)(nil)

// Add appends a chunk and returns its id, the count before the append. The
// embedding is copied; the caller may reuse its slice.
func (m *MemoryIndex) Add(content string, embedding []float32, metadata models.ChunkMetadata) (int, error) {
	if len(embedding) != m.dimensions {
		return 0, &models.DimensionMismatchError{Want: m.dimensions, Got: len(embedding)}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := len(m.chunks)
	vec := make([]float32, m.dimensions)
	copy(vec, embedding)
	m.chunks = append(m.chunks, models.Chunk{
		ID:        id,
		Content:   content,
		Embedding: vec,
		Metadata:  metadata,
	})
	return id, nil
}

// Search ranks every stored chunk against queryEmbedding and returns up to
// topK results per the threshold fallback policy. Returned results never
// carry the raw embedding.
func (m *MemoryIndex) Search(queryEmbedding []float32, topK int, threshold float64) ([]models.SearchResult, error) {
	if len(queryEmbedding) != m.dimensions {
		return nil, &models.DimensionMismatchError{Want: m.dimensions, Got: len(queryEmbedding)}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if topK <= 0 || len(m.chunks) == 0 {
		return []models.SearchResult{}, nil
	}

	type scored struct {
		idx        int
		similarity float64
	}
	ranked := make([]scored, len(m.chunks))
	for i := range m.chunks {
		ranked[i] = scored{idx: i, similarity: CosineSimilarity(queryEmbedding, m.chunks[i].Embedding)}
	}
	// Stable keeps insertion order for equal similarities.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].similarity > ranked[j].similarity })

	qualified := 0
	for qualified < len(ranked) && ranked[qualified].similarity >= threshold {
		qualified++
	}

	results := make([]models.SearchResult, 0, topK)
	if qualified == 0 {
		for i := 0; i < topK && i < len(ranked); i++ {
			results = append(results, m.toResult(ranked[i].idx, ranked[i].similarity, true))
		}
		return results, nil
	}
	for i := 0; i < topK && i < qualified; i++ {
		results = append(results, m.toResult(ranked[i].idx, ranked[i].similarity, false))
	}
	for i := qualified; len(results) < topK && i < len(ranked); i++ {
		results = append(results, m.toResult(ranked[i].idx, ranked[i].similarity, true))
	}
	return results, nil
}

// toResult builds a SearchResult with the display similarity clamped to
// [0, 1]. Below-threshold results additionally get the minVisible floor.
// Callers must hold at least a read lock.
func (m *MemoryIndex) toResult(idx int, similarity float64, belowThreshold bool) models.SearchResult {
	sim := utils.Clamp(similarity, 0, 1)
	if belowThreshold && sim < m.minVisible {
		sim = m.minVisible
	}
	c := &m.chunks[idx]
	return models.SearchResult{
		ID:         c.ID,
		Content:    c.Content,
		Metadata:   c.Metadata,
		Similarity: sim,
	}
}

// Clear empties the index. A subsequent Search returns an empty list.
func (m *MemoryIndex) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = nil
}

// Stats reports the number of stored chunks and distinct sources.
func (m *MemoryIndex) Stats() models.IndexStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sources := make(map[string]struct{}, len(m.chunks))
	for i := range m.chunks {
		sources[m.chunks[i].Metadata.Source] = struct{}{}
	}
	return models.IndexStats{
		TotalDocuments: len(m.chunks),
		TotalSources:   len(sources),
	}
}
