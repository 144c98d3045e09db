// Package keyword provides Bleve-backed keyword search over indexed chunks,
// used as lexical evidence alongside vector similarity, plus spell correction
// against a term dictionary.
package keyword

import "context"

// SearchOptions are optional parameters for keyword search. Nil means defaults.
type SearchOptions struct {
	// PhraseBoost multiplies the score when query terms appear close together
	// in the chunk, so "chest pain" as a phrase outranks scattered mentions.
	// Values > 1 enable the boost; 1.0 disables it.
	PhraseBoost float64
	// FuzzyEnabled turns on fuzzy term matching for typo tolerance.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2).
	// Default is 1 when FuzzyEnabled is true.
	Fuzziness int
}

// KeywordIndex defines keyword search operations over indexed chunks.
type KeywordIndex interface {
	Index(ctx context.Context, id, content, source string) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	Clear() error
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit. Content and Source are the
// stored chunk fields so callers do not need a second lookup.
type KeywordResult struct {
	ID      string
	Score   float64
	Content string
	Source  string
}

// TermDictionary provides the term universe for spell checking. The interface
// allows swapping the corpus-derived dictionary for a fixed vocabulary.
type TermDictionary interface {
	// GetAllTerms returns all unique terms in the dictionary.
	GetAllTerms() ([]string, error)
	// GetTermFrequency returns the frequency weight for a term.
	GetTermFrequency(term string) (int, error)
	// ContainsTerm checks whether a term exists in the dictionary.
	ContainsTerm(term string) (bool, error)
}

// Vocabulary is a static map-backed TermDictionary for fixed word lists.
type Vocabulary struct {
	terms map[string]int
}

// NewVocabulary builds a Vocabulary from a term -> frequency weight map.
func NewVocabulary(terms map[string]int) *Vocabulary {
	return &Vocabulary{terms: terms}
}

func (v *Vocabulary) GetAllTerms() ([]string, error) {
	out := make([]string, 0, len(v.terms))
	for term := range v.terms {
		out = append(out, term)
	}
	return out, nil
}

func (v *Vocabulary) GetTermFrequency(term string) (int, error) {
	return v.terms[term], nil
}

func (v *Vocabulary) ContainsTerm(term string) (bool, error) {
	_, ok := v.terms[term]
	return ok, nil
}
