package rag

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/medioracle/medirag/internal/keyword"
	"github.com/medioracle/medirag/internal/models"
	"github.com/medioracle/medirag/pkg/utils"
)

// Fusion weights for hybrid retrieval. Vector similarity carries the bulk of
// the relevance signal; keyword matching rescues lexically exact hits that
// low-fidelity embeddings miss.
const (
	vectorWeight  = 0.7
	keywordWeight = 0.3
)

// retrieve fetches evidence chunks for query. With a keyword index configured
// the vector and keyword searches run concurrently and their rankings fuse;
// otherwise this is a plain vector search. A keyword failure degrades to
// vector-only results; a vector failure is fatal since it indicates an
// embedding dimension bug.
func (e *Engine) retrieve(ctx context.Context, query string) ([]models.SearchResult, error) {
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	if e.keywords == nil {
		return e.index.Search(queryVec, e.topK, e.effectiveThreshold())
	}

	var (
		wg         sync.WaitGroup
		vecResults []models.SearchResult
		vecErr     error
		kwResults  []*keyword.KeywordResult
		kwErr      error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		vecResults, vecErr = e.index.Search(queryVec, e.topK, e.effectiveThreshold())
	}()
	go func() {
		defer wg.Done()
		q := query
		if e.spell != nil {
			q = e.spell.GetSuggestedQuery(q)
		}
		kwResults, kwErr = e.keywords.Search(ctx, q, e.topK, &keyword.SearchOptions{
			PhraseBoost:  2.0,
			FuzzyEnabled: true,
		})
	}()
	wg.Wait()

	if vecErr != nil {
		return nil, fmt.Errorf("search index: %w", vecErr)
	}
	if kwErr != nil {
		e.logger.Warn("keyword search failed, using vector results only", zap.Error(kwErr))
		return vecResults, nil
	}
	return fuseResults(vecResults, kwResults, e.topK), nil
}

type fusedHit struct {
	result models.SearchResult
	score  float64
}

// fuseResults merges the two rankings by chunk id. Keyword scores are
// unbounded, so they normalize against the best keyword hit before weighting.
// The fused score becomes the result's displayed similarity.
func fuseResults(vecResults []models.SearchResult, kwResults []*keyword.KeywordResult, topK int) []models.SearchResult {
	maxKw := 0.0
	for _, k := range kwResults {
		if k.Score > maxKw {
			maxKw = k.Score
		}
	}

	byID := make(map[string]*fusedHit, len(vecResults)+len(kwResults))
	var order []string
	for _, r := range vecResults {
		key := strconv.Itoa(r.ID)
		byID[key] = &fusedHit{result: r, score: vectorWeight * r.Similarity}
		order = append(order, key)
	}
	for _, k := range kwResults {
		norm := 0.0
		if maxKw > 0 {
			norm = k.Score / maxKw
		}
		if hit, ok := byID[k.ID]; ok {
			hit.score += keywordWeight * norm
			continue
		}
		id, err := strconv.Atoi(k.ID)
		if err != nil {
			continue
		}
		byID[k.ID] = &fusedHit{
			result: models.SearchResult{
				ID:       id,
				Content:  k.Content,
				Metadata: models.ChunkMetadata{Source: k.Source},
			},
			score: keywordWeight * norm,
		}
		order = append(order, k.ID)
	}

	hits := make([]*fusedHit, 0, len(order))
	for _, key := range order {
		hits = append(hits, byID[key])
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}

	out := make([]models.SearchResult, len(hits))
	for i, h := range hits {
		r := h.result
		r.Similarity = utils.Clamp(h.score, 0, 1)
		out[i] = r
	}
	return out
}
