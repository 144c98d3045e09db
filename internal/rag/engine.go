// Package rag composes chunking, embedding, indexing, retrieval, safety
// gating, and synthesis into the ingest, query, and diagnose operations.
package rag

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/medioracle/medirag/internal/chunker"
	"github.com/medioracle/medirag/internal/diagnosis"
	"github.com/medioracle/medirag/internal/embedding"
	"github.com/medioracle/medirag/internal/extract"
	"github.com/medioracle/medirag/internal/keyword"
	"github.com/medioracle/medirag/internal/models"
	"github.com/medioracle/medirag/internal/safety"
	"github.com/medioracle/medirag/internal/synthesis"
	"github.com/medioracle/medirag/internal/vector"
)

const (
	defaultTopK          = 5
	defaultThreshold     = 0.7
	defaultMockThreshold = 0.1
)

// Engine is the orchestrator. It owns the indexes and wires every pipeline
// stage together; construct one per deployment and share it across requests.
type Engine struct {
	chunker   *chunker.Chunker
	embedder  embedding.Embedder
	index     vector.Index
	keywords  keyword.KeywordIndex
	guard     *safety.Guard
	scorer    *diagnosis.Scorer
	synth     *synthesis.Synthesizer
	spell     *keyword.SpellChecker
	extractor *extract.Extractor

	topK          int
	threshold     float64
	mockThreshold float64
	logger        *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithChunking sets the chunk character budget and overlap.
func WithChunking(size, overlap int) Option {
	return func(e *Engine) {
		e.chunker = chunker.NewChunker(size, overlap)
	}
}

// WithKeywordIndex enables hybrid retrieval for the diagnosis path.
func WithKeywordIndex(ki keyword.KeywordIndex) Option {
	return func(e *Engine) {
		e.keywords = ki
	}
}

// WithSpellChecker normalizes symptom and keyword-query spelling.
func WithSpellChecker(sc *keyword.SpellChecker) Option {
	return func(e *Engine) {
		e.spell = sc
	}
}

// WithThresholds sets the similarity thresholds for real and mock embedding
// modes. The effective threshold is picked per search, since the embedder can
// degrade to fallback mode at any point.
func WithThresholds(standard, mock float64) Option {
	return func(e *Engine) {
		e.threshold = standard
		e.mockThreshold = mock
	}
}

// WithTopK bounds search result counts.
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine builds an engine from its required collaborators.
func NewEngine(
	embedder embedding.Embedder,
	index vector.Index,
	guard *safety.Guard,
	scorer *diagnosis.Scorer,
	synth *synthesis.Synthesizer,
	opts ...Option,
) (*Engine, error) {
	if embedder == nil {
		return nil, fmt.Errorf("engine requires an embedder")
	}
	if index == nil {
		return nil, fmt.Errorf("engine requires a vector index")
	}
	if guard == nil {
		return nil, fmt.Errorf("engine requires a safety guard")
	}
	if scorer == nil {
		return nil, fmt.Errorf("engine requires a diagnosis scorer")
	}
	if synth == nil {
		return nil, fmt.Errorf("engine requires a synthesizer")
	}

	e := &Engine{
		chunker:       chunker.NewChunker(500, 100),
		embedder:      embedder,
		index:         index,
		guard:         guard,
		scorer:        scorer,
		synth:         synth,
		extractor:     extract.NewExtractor(),
		topK:          defaultTopK,
		threshold:     defaultThreshold,
		mockThreshold: defaultMockThreshold,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// effectiveThreshold picks the similarity bar for the current embedding mode.
func (e *Engine) effectiveThreshold() float64 {
	if embedding.IsMock(e.embedder) {
		return e.mockThreshold
	}
	return e.threshold
}

// Query answers a free-text question from the indexed corpus. Emergency
// language short-circuits to the fixed payload before any retrieval happens.
func (e *Engine) Query(ctx context.Context, query string) (*models.QueryResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &models.ValidationError{Field: "query", Reason: "must not be empty"}
	}

	if e.guard.DetectEmergency(query) {
		e.logger.Warn("emergency language in query", zap.String("query", query))
		payload := e.guard.EmergencyResponse()
		return &models.QueryResponse{
			Success:     true,
			Response:    payload.Message + "\n" + payload.Disclaimer,
			SourcesUsed: []models.SourceRef{},
			Confidence:  payload.Confidence,
			IsEmergency: true,
		}, nil
	}

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := e.index.Search(queryVec, e.topK, e.effectiveThreshold())
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	answer := e.synth.Synthesize(ctx, query, results)
	return &models.QueryResponse{
		Success:     true,
		Response:    e.guard.EnforceConstraints(answer.Response),
		SourcesUsed: answer.Sources,
		Confidence:  answer.Confidence,
		TokensUsed:  answer.TokensUsed,
	}, nil
}

// Diagnose scores candidate conditions for a symptom list, using retrieved
// evidence when available. Retrieval failure is not fatal: scoring degrades
// to the rule tables, and emergency detection never depends on retrieval.
func (e *Engine) Diagnose(ctx context.Context, req models.DiagnoseRequest) (*models.DiagnosisResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Symptoms = e.normalizeSymptoms(req.Symptoms)

	evidence, err := e.retrieve(ctx, diagnosis.RetrievalQuery(req))
	if err != nil {
		e.logger.Warn("evidence retrieval failed, scoring from rules only", zap.Error(err))
		evidence = nil
	}

	resp := e.scorer.Diagnose(req, evidence)
	return &resp, nil
}

// AnalyzeSymptoms runs the retrieval-free rule assessment.
func (e *Engine) AnalyzeSymptoms(symptoms []string) (*models.SymptomAnalysis, error) {
	req := models.DiagnoseRequest{Symptoms: symptoms}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	analysis := e.scorer.AnalyzeSymptoms(e.normalizeSymptoms(req.Symptoms))
	return &analysis, nil
}

// normalizeSymptoms spell-corrects each symptom against the clinical
// vocabulary, leaving input untouched when no checker is configured.
func (e *Engine) normalizeSymptoms(symptoms []string) []string {
	out := make([]string, len(symptoms))
	copy(out, symptoms)
	if e.spell == nil {
		return out
	}
	for i, s := range out {
		corrected := e.spell.GetSuggestedQuery(s)
		if corrected != s {
			e.logger.Debug("symptom spelling normalized",
				zap.String("from", s), zap.String("to", corrected))
			out[i] = corrected
		}
	}
	return out
}

// Clear empties both indexes.
func (e *Engine) Clear() error {
	e.index.Clear()
	if e.keywords != nil {
		if err := e.keywords.Clear(); err != nil {
			return fmt.Errorf("clear keyword index: %w", err)
		}
	}
	return nil
}

// Stats reports index sizes and the active embedding mode. A keyword count
// diverging from the chunk count signals a partially failed ingest.
type Stats struct {
	Index            models.IndexStats `json:"index"`
	KeywordDocuments uint64            `json:"keyword_documents"`
	EmbeddingMode    string            `json:"embedding_mode"`
	Threshold        float64           `json:"similarity_threshold"`
}

// Stats returns current engine statistics.
func (e *Engine) Stats() Stats {
	s := Stats{
		Index:         e.index.Stats(),
		EmbeddingMode: "real",
		Threshold:     e.effectiveThreshold(),
	}
	if embedding.IsMock(e.embedder) {
		s.EmbeddingMode = "mock"
	}
	if e.keywords != nil {
		if n, err := e.keywords.DocCount(); err == nil {
			s.KeywordDocuments = n
		}
	}
	return s
}

// Close releases the engine's external resources.
func (e *Engine) Close() error {
	var firstErr error
	if err := e.embedder.Close(); err != nil {
		firstErr = err
	}
	if e.keywords != nil {
		if err := e.keywords.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
