package keyword

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

const defaultFuzziness = 1

// chunkDocument is the shape Bleve indexes per chunk.
type chunkDocument struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// BleveIndex implements KeywordIndex with an in-memory Bleve index. The
// corpus lives and dies with the process, matching the vector index.
type BleveIndex struct {
	mu    sync.RWMutex
	index bleve.Index
}

func buildMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	contentMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so "fever"
	// matches the exact word; the English analyzer would stem and miss
	// clinical terms.
	contentMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", contentMapping)
	docMapping.AddFieldMappingsAt("source", bleve.NewKeywordFieldMapping())
	im.DefaultMapping = docMapping
	return im
}

// NewBleveIndex creates an empty in-memory keyword index.
func NewBleveIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("create keyword index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

var _ KeywordIndex = (*BleveIndex)(nil)

func (b *BleveIndex) snapshot() bleve.Index {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.index
}

// Index indexes a chunk's content under id.
func (b *BleveIndex) Index(ctx context.Context, id, content, source string) error {
	return b.snapshot().Index(id, chunkDocument{Content: content, Source: source})
}

// Search runs a match query over chunk content and returns up to limit hits.
// Multi-term queries are re-ranked with a term coverage penalty so chunks
// matching all terms outrank chunks repeating one term, and an optional
// phrase proximity boost. Fuzzy matching tolerates typos in symptom words.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error) {
	if limit <= 0 {
		return nil, nil
	}
	phraseBoost := 1.0
	fuzzyEnabled := false
	fuzziness := defaultFuzziness
	if opts != nil {
		if opts.PhraseBoost > 0 {
			phraseBoost = opts.PhraseBoost
		}
		fuzzyEnabled = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}

	terms := tokenizeQuery(query)
	if len(terms) == 0 {
		return nil, nil
	}

	index := b.snapshot()

	// Request extra so re-ranking over the merged set stays accurate.
	reqSize := limit * 2
	if reqSize < 50 {
		reqSize = 50
	}

	var base blevequery.Query
	if fuzzyEnabled {
		base = fuzzyDisjunction(terms, fuzziness)
	} else {
		mq := bleve.NewMatchQuery(query)
		mq.SetField("content")
		base = mq
	}
	req := bleve.NewSearchRequest(base)
	req.Size = reqSize
	req.Fields = []string{"content", "source"}
	res, err := index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	coverage := make(map[string]int)
	if len(terms) > 1 {
		coverage = termCoverage(ctx, index, terms, reqSize, fuzzyEnabled, fuzziness)
	}
	phraseMatches := make(map[string]bool)
	if phraseBoost > 1.0 && len(terms) > 1 {
		phraseMatches = findPhraseMatches(ctx, index, query, reqSize)
	}

	out := make([]*KeywordResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		score := hit.Score
		if len(terms) > 1 {
			matched := coverage[hit.ID]
			if matched == 0 {
				matched = 1
			}
			// Squared coverage heavily penalizes chunks matching only a
			// subset of the query terms.
			c := float64(matched) / float64(len(terms))
			score *= c * c
		}
		if phraseMatches[hit.ID] {
			score *= phraseBoost
		}
		kr := &KeywordResult{ID: hit.ID, Score: score}
		if v, ok := hit.Fields["content"].(string); ok {
			kr.Content = v
		}
		if v, ok := hit.Fields["source"].(string); ok {
			kr.Source = v
		}
		out = append(out, kr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// tokenizeQuery splits a query into lowercase terms.
func tokenizeQuery(query string) []string {
	words := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			terms = append(terms, w)
		}
	}
	return terms
}

// fuzzyDisjunction builds an OR of per-term fuzzy queries over content.
func fuzzyDisjunction(terms []string, fuzziness int) blevequery.Query {
	if len(terms) == 1 {
		fq := bleve.NewFuzzyQuery(terms[0])
		fq.SetFuzziness(fuzziness)
		fq.SetField("content")
		return fq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField("content")
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// termCoverage counts how many distinct query terms each chunk matches.
func termCoverage(ctx context.Context, index bleve.Index, terms []string, reqSize int, fuzzyEnabled bool, fuzziness int) map[string]int {
	coverage := make(map[string]int)
	for _, term := range terms {
		var q blevequery.Query
		if fuzzyEnabled {
			fq := bleve.NewFuzzyQuery(term)
			fq.SetFuzziness(fuzziness)
			fq.SetField("content")
			q = fq
		} else {
			mq := bleve.NewMatchQuery(term)
			mq.SetField("content")
			q = mq
		}
		req := bleve.NewSearchRequest(q)
		req.Size = reqSize
		res, err := index.SearchInContext(ctx, req)
		if err != nil {
			continue
		}
		for _, hit := range res.Hits {
			coverage[hit.ID]++
		}
	}
	return coverage
}

// findPhraseMatches finds chunks where the query terms appear adjacently.
func findPhraseMatches(ctx context.Context, index bleve.Index, query string, reqSize int) map[string]bool {
	matches := make(map[string]bool)
	pq := bleve.NewMatchPhraseQuery(query)
	pq.SetField("content")
	req := bleve.NewSearchRequest(pq)
	req.Size = reqSize
	res, err := index.SearchInContext(ctx, req)
	if err != nil {
		return matches
	}
	for _, hit := range res.Hits {
		matches[hit.ID] = true
	}
	return matches
}

// Clear drops every indexed chunk by swapping in a fresh index.
func (b *BleveIndex) Clear() error {
	fresh, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return fmt.Errorf("recreate keyword index: %w", err)
	}
	b.mu.Lock()
	old := b.index
	b.index = fresh
	b.mu.Unlock()
	return old.Close()
}

// DocCount returns the number of indexed chunks.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.snapshot().DocCount()
}

// Close closes the underlying Bleve index.
func (b *BleveIndex) Close() error {
	return b.snapshot().Close()
}
