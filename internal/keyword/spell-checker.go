package keyword

import (
	"sort"
	"strings"
	"sync"
)

// Suggestion is a single spelling suggestion with its ranking score.
type Suggestion struct {
	Term      string
	Distance  int
	Frequency int
	Score     float64
}

// SpellCheckResult is the outcome of spell checking a query.
type SpellCheckResult struct {
	OriginalQuery   string
	CorrectedQuery  string
	Suggestions     []Suggestion
	HasCorrections  bool
	MisspelledTerms []string
}

// SpellChecker corrects query terms against a TermDictionary. With a fixed
// clinical vocabulary it normalizes symptom spellings ("fevr" -> "fever")
// before keyword scoring sees them.
type SpellChecker struct {
	dictionary     TermDictionary
	maxDistance    int
	minFreq        int
	maxSuggestions int

	cacheMu    sync.RWMutex
	termsCache []string
	termSet    map[string]struct{}
	cacheValid bool
}

// SpellCheckerOption configures a SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinFrequency sets the minimum dictionary frequency for suggestions.
// Terms below it are ignored as rare or noise.
func WithMinFrequency(f int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if f >= 0 {
			s.minFreq = f
		}
	}
}

// WithMaxSuggestions caps the number of suggestions returned per term.
func WithMaxSuggestions(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSpellChecker creates a SpellChecker over the given dictionary.
func NewSpellChecker(dict TermDictionary, opts ...SpellCheckerOption) *SpellChecker {
	s := &SpellChecker{
		dictionary:     dict,
		maxDistance:    2,
		minFreq:        1,
		maxSuggestions: 5,
		termSet:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RefreshCache reloads the term cache from the dictionary. Call after the
// dictionary contents change.
func (s *SpellChecker) RefreshCache() error {
	terms, err := s.dictionary.GetAllTerms()
	if err != nil {
		return err
	}

	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[strings.ToLower(t)] = struct{}{}
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.termsCache = terms
	s.termSet = set
	s.cacheValid = true
	return nil
}

// ensureCache returns a snapshot of the cached term list and membership set,
// loading them from the dictionary on first use. Snapshots are safe because
// RefreshCache replaces both wholesale rather than mutating in place.
func (s *SpellChecker) ensureCache() ([]string, map[string]struct{}, error) {
	s.cacheMu.RLock()
	if s.cacheValid {
		terms, set := s.termsCache, s.termSet
		s.cacheMu.RUnlock()
		return terms, set, nil
	}
	s.cacheMu.RUnlock()

	if err := s.RefreshCache(); err != nil {
		return nil, nil, err
	}
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.termsCache, s.termSet, nil
}

// Check spell-checks every term of a query and returns the corrections.
// Terms present in the dictionary pass through unchanged; unknown terms are
// replaced by their best suggestion when one exists within the distance bound.
func (s *SpellChecker) Check(query string) (*SpellCheckResult, error) {
	_, known, err := s.ensureCache()
	if err != nil {
		return nil, err
	}

	result := &SpellCheckResult{
		OriginalQuery:   query,
		Suggestions:     []Suggestion{},
		MisspelledTerms: []string{},
	}

	var corrected []string
	for _, term := range tokenizeQuery(query) {
		lower := strings.ToLower(term)
		if _, ok := known[lower]; ok {
			corrected = append(corrected, term)
			continue
		}
		alts := s.Suggest(lower)
		if len(alts) == 0 {
			corrected = append(corrected, term)
			continue
		}
		result.HasCorrections = true
		result.MisspelledTerms = append(result.MisspelledTerms, term)
		result.Suggestions = append(result.Suggestions, alts...)
		corrected = append(corrected, alts[0].Term)
	}

	result.CorrectedQuery = strings.Join(corrected, " ")
	return result, nil
}

// shortTermRunes is the length at or below which a term gets only a single
// edit of tolerance. Rewriting a three-letter word by two edits lands on
// unrelated vocabulary more often than it fixes a typo.
const shortTermRunes = 4

// distanceBound returns the edit-distance budget for a term.
func (s *SpellChecker) distanceBound(term string) int {
	if s.maxDistance > 1 && len([]rune(term)) <= shortTermRunes {
		return 1
	}
	return s.maxDistance
}

// Suggest returns ranked spelling suggestions for a single term: highest
// score first, ties broken by smaller distance, then alphabetically so the
// ordering is deterministic.
func (s *SpellChecker) Suggest(term string) []Suggestion {
	dictTerms, _, err := s.ensureCache()
	if err != nil {
		return nil
	}

	lower := strings.ToLower(term)
	bound := s.distanceBound(lower)
	var out []Suggestion
	for _, candidate := range dictTerms {
		cl := strings.ToLower(candidate)
		if cl == lower {
			continue
		}
		// Terms whose length differs by more than the budget cannot match.
		if gap := len(cl) - len(lower); gap > bound || -gap > bound {
			continue
		}
		d := LevenshteinDistance(lower, cl)
		if d > bound {
			continue
		}
		freq, err := s.dictionary.GetTermFrequency(candidate)
		if err != nil || freq < s.minFreq {
			continue
		}
		out = append(out, Suggestion{
			Term:      candidate,
			Distance:  d,
			Frequency: freq,
			Score:     float64(freq) / float64(d+1),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > s.maxSuggestions {
		out = out[:s.maxSuggestions]
	}
	return out
}

// GetSuggestedQuery returns the best corrected query, or the original when
// nothing needed correcting or the dictionary is unavailable.
func (s *SpellChecker) GetSuggestedQuery(query string) string {
	result, err := s.Check(query)
	if err != nil || !result.HasCorrections {
		return query
	}
	return result.CorrectedQuery
}
