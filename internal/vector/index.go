// Package vector provides the in-memory similarity index that stores
// document chunks and ranks them by cosine similarity.
package vector

import "github.com/medioracle/medirag/internal/models"

// Index stores chunk/embedding/metadata triples and serves ranked
// similarity search over them.
type Index interface {
	// Add appends a chunk and returns its id, the count before the append.
	Add(content string, embedding []float32, metadata models.ChunkMetadata) (int, error)
	// Search returns up to topK results ranked by similarity, applying the
	// threshold fallback policy described on MemoryIndex.
	Search(queryEmbedding []float32, topK int, threshold float64) ([]models.SearchResult, error)
	// Clear empties the index.
	Clear()
	// Stats reports chunk and distinct source counts.
	Stats() models.IndexStats
}
