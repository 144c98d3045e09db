// Package models defines core data structures for chunks, requests, and responses.
package models

import "time"

// ChunkMetadata describes where a chunk came from within its source document.
type ChunkMetadata struct {
	Source      string    `json:"source"`
	ChunkIndex  int       `json:"chunk_index"`
	TotalChunks int       `json:"total_chunks"`
	CreatedAt   time.Time `json:"created_at"`
}

// Chunk is a bounded segment of a source document with its embedding.
// Chunks are owned by the vector index: immutable once added, destroyed
// only by a full index clear. The embedding never serializes.
type Chunk struct {
	ID        int           `json:"id"`
	Content   string        `json:"content"`
	Embedding []float32     `json:"-"`
	Metadata  ChunkMetadata `json:"metadata"`
}

// SearchResult is a single retrieval hit. It carries the chunk's content and
// metadata but never the raw embedding. Similarity is clamped to [0,1] for display.
type SearchResult struct {
	ID         int           `json:"id"`
	Content    string        `json:"content"`
	Metadata   ChunkMetadata `json:"metadata"`
	Similarity float64       `json:"similarity"`
}

// IndexStats reports the size of the index. TotalDocuments counts stored
// chunks; TotalSources counts distinct source names.
type IndexStats struct {
	TotalDocuments int `json:"total_documents"`
	TotalSources   int `json:"total_sources"`
}

// IngestResult summarizes a completed document ingestion.
type IngestResult struct {
	SourceName    string     `json:"source_name"`
	DocumentID    string     `json:"document_id"`
	ChunksCreated int        `json:"chunks_created"`
	Stats         IndexStats `json:"stats"`
}
