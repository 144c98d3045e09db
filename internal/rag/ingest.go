package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medioracle/medirag/internal/models"
)

const fileDocPrefix = "file:"

// fileDocID returns a stable document ID for a file path. The same path
// always yields the same ID, so corpus watcher re-ingests of a changed file
// report a recognizable document identity instead of a fresh UUID.
func fileDocID(path string) string {
	normalized := filepath.Clean(path)
	hash := sha256.Sum256([]byte(normalized))
	return fileDocPrefix + hex.EncodeToString(hash[:])
}

// IngestText chunks, embeds, and indexes raw document text under sourceName.
// Chunks land in the vector index and, when configured, the keyword index; a
// keyword indexing failure is logged but does not undo the vector add.
func (e *Engine) IngestText(ctx context.Context, content, sourceName string) (*models.IngestResult, error) {
	return e.ingest(ctx, content, sourceName, uuid.NewString())
}

// IngestFile extracts plaintext from the file at path and ingests it under
// the file's base name.
func (e *Engine) IngestFile(ctx context.Context, path string) (*models.IngestResult, error) {
	text, err := e.extractor.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	return e.ingest(ctx, text, filepath.Base(path), fileDocID(path))
}

// IngestUpload extracts plaintext from an uploaded file body, picking the
// extraction strategy from the filename extension.
func (e *Engine) IngestUpload(ctx context.Context, filename string, data []byte) (*models.IngestResult, error) {
	text, err := e.extractor.ExtractBytes(data, strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	return e.ingest(ctx, text, filepath.Base(filename), uuid.NewString())
}

func (e *Engine) ingest(ctx context.Context, content, sourceName, docID string) (*models.IngestResult, error) {
	req := models.IngestRequest{SourceName: sourceName, Content: content}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	chunks := e.chunker.Chunk(req.Content, req.SourceName)
	if len(chunks) == 0 {
		return nil, &models.ValidationError{Field: "content", Reason: "contains no indexable text"}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	for i, chunk := range chunks {
		id, err := e.index.Add(chunk.Content, vectors[i], chunk.Metadata)
		if err != nil {
			return nil, fmt.Errorf("index chunk %d of %s: %w", i, req.SourceName, err)
		}
		if e.keywords != nil {
			if err := e.keywords.Index(ctx, strconv.Itoa(id), chunk.Content, req.SourceName); err != nil {
				e.logger.Warn("keyword indexing failed for chunk",
					zap.Int("chunk_id", id),
					zap.String("source", req.SourceName),
					zap.Error(err))
			}
		}
	}

	e.logger.Info("document ingested",
		zap.String("source", req.SourceName),
		zap.Int("chunks", len(chunks)))

	return &models.IngestResult{
		SourceName:    req.SourceName,
		DocumentID:    docID,
		ChunksCreated: len(chunks),
		Stats:         e.index.Stats(),
	}, nil
}
