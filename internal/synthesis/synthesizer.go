// Package synthesis turns retrieved chunks into a readable, cited answer.
// The extractive path works with no external services; an optional completion
// client only improves wording and never becomes a hard dependency.
package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/medioracle/medirag/internal/completion"
	"github.com/medioracle/medirag/internal/models"
	"github.com/medioracle/medirag/pkg/utils"
)

const (
	defaultExcerptLength = 300
	refExcerptLength     = 100
	keyPointLength       = 200
	defaultMaxKeyPoints  = 5
	maxConfidence        = 0.95
)

// NoInformationMessage is the deterministic reply when retrieval surfaces
// nothing, even through fallback.
const NoInformationMessage = "I could not find relevant information in the knowledge base to answer your question. Please consult a qualified healthcare provider for medical advice."

// genericRecommendations close every synthesized answer.
var genericRecommendations = []string{
	"Monitor your symptoms closely",
	"Stay hydrated and rest",
	"Consult a healthcare provider if symptoms persist or worsen",
}

// Answer is a synthesized response with its citations and confidence.
type Answer struct {
	Response   string
	Sources    []models.SourceRef
	Confidence float64
	TokensUsed int
}

// Synthesizer builds answers from search results.
type Synthesizer struct {
	disclaimer    string
	excerptLength int
	maxKeyPoints  int
	completer     completion.Client
	logger        *zap.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithDisclaimer prepends text as the answer header.
func WithDisclaimer(text string) Option {
	return func(s *Synthesizer) {
		s.disclaimer = text
	}
}

// WithExcerptLength bounds per-source excerpts to n bytes.
func WithExcerptLength(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.excerptLength = n
		}
	}
}

// WithCompletion enables the generative path through c.
func WithCompletion(c completion.Client) Option {
	return func(s *Synthesizer) {
		s.completer = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Synthesizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSynthesizer creates a synthesizer with the given options.
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		excerptLength: defaultExcerptLength,
		maxKeyPoints:  defaultMaxKeyPoints,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize builds an answer for query from results. With no results it
// returns the no-information reply at confidence zero. Otherwise confidence is
// the top similarity capped below certainty, and the extractive body is always
// produced; when a completion client is configured its reply replaces the
// body, with any transport or parse failure falling back to the extractive
// text.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []models.SearchResult) Answer {
	if len(results) == 0 {
		return Answer{
			Response:   NoInformationMessage,
			Sources:    []models.SourceRef{},
			Confidence: 0,
		}
	}

	sources := make([]models.SourceRef, 0, len(results))
	for _, r := range results {
		sources = append(sources, models.SourceRef{
			Source:     r.Metadata.Source,
			Similarity: fmt.Sprintf("%.3f", r.Similarity),
			Excerpt:    utils.Truncate(utils.NormalizeWhitespace(r.Content), refExcerptLength),
		})
	}

	answer := Answer{
		Response:   s.extractive(query, results),
		Sources:    sources,
		Confidence: utils.Clamp(results[0].Similarity, 0, maxConfidence),
	}

	if s.completer != nil {
		body, tokens, err := s.generative(ctx, query, results)
		if err != nil {
			s.logger.Warn("generative completion failed, keeping extractive answer", zap.Error(err))
		} else {
			answer.Response = body
			answer.TokensUsed = tokens
		}
	}
	return answer
}

// extractive assembles the answer purely from retrieved text.
func (s *Synthesizer) extractive(query string, results []models.SearchResult) string {
	keywords := QueryKeywords(query)

	var b strings.Builder
	s.writeHeader(&b, query)
	b.WriteString("Based on the indexed medical references:\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s (relevance %.0f%%):\n%s\n\n",
			i+1, r.Metadata.Source, r.Similarity*100, BuildExcerpt(r.Content, keywords, s.excerptLength))
	}

	var pooled strings.Builder
	for _, r := range results {
		pooled.WriteString(r.Content)
		pooled.WriteString(" ")
	}
	if points := ExtractKeyPoints(pooled.String(), s.maxKeyPoints); len(points) > 0 {
		b.WriteString("🔑 Key points:\n")
		for _, p := range points {
			b.WriteString("• " + p + "\n")
		}
		b.WriteString("\n")
	}

	s.writeRecommendations(&b)
	return strings.TrimSpace(b.String())
}

func (s *Synthesizer) writeHeader(b *strings.Builder, query string) {
	if d := strings.TrimSpace(s.disclaimer); d != "" {
		b.WriteString(d)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(b, "📖 Your question: \"%s\"\n\n", query)
}

func (s *Synthesizer) writeRecommendations(b *strings.Builder) {
	b.WriteString("💡 General guidance:\n")
	for _, rec := range genericRecommendations {
		b.WriteString("• " + rec + "\n")
	}
}

const generativeSystemPrompt = `You are a cautious medical information assistant. Answer using only the provided context. Never state or imply a diagnosis. Reply with a JSON object of the form {"answer": string, "key_points": [string]} and nothing else.`

type generativeReply struct {
	Answer    string   `json:"answer"`
	KeyPoints []string `json:"key_points"`
}

// generative asks the completion client for a reworded answer and wraps it in
// the standard answer shell. The reply must match the JSON contract exactly.
func (s *Synthesizer) generative(ctx context.Context, query string, results []models.SearchResult) (string, int, error) {
	var ctxB strings.Builder
	for i, r := range results {
		fmt.Fprintf(&ctxB, "[%d] %s (similarity %.3f):\n%s\n\n", i+1, r.Metadata.Source, r.Similarity, r.Content)
	}
	user := fmt.Sprintf("Context:\n%sQuestion: %s", ctxB.String(), query)

	res, err := s.completer.Complete(ctx, generativeSystemPrompt, user)
	if err != nil {
		return "", 0, err
	}
	reply, err := parseGenerativeReply(res.Content)
	if err != nil {
		return "", 0, err
	}

	var b strings.Builder
	s.writeHeader(&b, query)
	b.WriteString(strings.TrimSpace(reply.Answer))
	b.WriteString("\n\n")
	if len(reply.KeyPoints) > 0 {
		b.WriteString("🔑 Key points:\n")
		for _, p := range reply.KeyPoints {
			if p = strings.TrimSpace(p); p != "" {
				b.WriteString("• " + p + "\n")
			}
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Sources consulted: %s\n\n", strings.Join(sourceNames(results), ", "))
	s.writeRecommendations(&b)
	return strings.TrimSpace(b.String()), res.TokensUsed, nil
}

// parseGenerativeReply enforces the completion JSON contract. Malformed
// replies are an error, never passed through as answer text.
func parseGenerativeReply(raw string) (*generativeReply, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var reply generativeReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("completion reply is not valid JSON: %w", err)
	}
	if strings.TrimSpace(reply.Answer) == "" {
		return nil, fmt.Errorf("completion reply has an empty answer")
	}
	return &reply, nil
}

func sourceNames(results []models.SearchResult) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range results {
		if !seen[r.Metadata.Source] {
			seen[r.Metadata.Source] = true
			names = append(names, r.Metadata.Source)
		}
	}
	return names
}
