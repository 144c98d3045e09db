package keyword

import (
	"errors"
	"testing"
)

// failingDictionary always errors, for exercising the degraded paths.
type failingDictionary struct{}

func (failingDictionary) GetAllTerms() ([]string, error) {
	return nil, errors.New("dictionary unavailable")
}

func (failingDictionary) GetTermFrequency(string) (int, error) {
	return 0, errors.New("dictionary unavailable")
}

func (failingDictionary) ContainsTerm(string) (bool, error) {
	return false, errors.New("dictionary unavailable")
}

func symptomDict() *Vocabulary {
	return NewVocabulary(map[string]int{
		"fever":    12,
		"cough":    10,
		"headache": 8,
		"nausea":   6,
		"fatigue":  5,
		"severe":   9,
		"chest":    7,
		"pain":     11,
	})
}

func TestNewSpellChecker_Defaults(t *testing.T) {
	sc := NewSpellChecker(symptomDict())
	if sc.maxDistance != 2 {
		t.Errorf("default maxDistance = %d, want 2", sc.maxDistance)
	}
	if sc.minFreq != 1 {
		t.Errorf("default minFreq = %d, want 1", sc.minFreq)
	}
	if sc.maxSuggestions != 5 {
		t.Errorf("default maxSuggestions = %d, want 5", sc.maxSuggestions)
	}
}

func TestNewSpellChecker_Options(t *testing.T) {
	sc := NewSpellChecker(symptomDict(),
		WithMaxDistance(1),
		WithMinFrequency(3),
		WithMaxSuggestions(2),
	)
	if sc.maxDistance != 1 || sc.minFreq != 3 || sc.maxSuggestions != 2 {
		t.Errorf("options not applied: %d %d %d", sc.maxDistance, sc.minFreq, sc.maxSuggestions)
	}
}

func TestSpellChecker_Suggest(t *testing.T) {
	sc := NewSpellChecker(symptomDict(), WithMaxDistance(2))
	if err := sc.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache: %v", err)
	}

	tests := []struct {
		name      string
		term      string
		wantFirst string
	}{
		{"fevr -> fever", "fevr", "fever"},
		{"headake -> headache", "headake", "headache"},
		{"nausia -> nausea", "nausia", "nausea"},
		{"payn -> pain", "payn", "pain"},
		{"xyzzy has no match", "xyzzy", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestions := sc.Suggest(tt.term)
			if tt.wantFirst == "" {
				if len(suggestions) != 0 {
					t.Errorf("Suggest(%q) = %v, want none", tt.term, suggestions)
				}
				return
			}
			if len(suggestions) == 0 {
				t.Fatalf("Suggest(%q) returned nothing", tt.term)
			}
			if suggestions[0].Term != tt.wantFirst {
				t.Errorf("Suggest(%q)[0].Term = %q, want %q", tt.term, suggestions[0].Term, tt.wantFirst)
			}
		})
	}
}

func TestSpellChecker_Check(t *testing.T) {
	sc := NewSpellChecker(symptomDict(), WithMaxDistance(2))

	tests := []struct {
		name           string
		query          string
		wantCorrected  string
		wantCorrects   bool
		wantMisspelled int
	}{
		{"clean query", "severe headache", "severe headache", false, 0},
		{"single typo", "fevr", "fever", true, 1},
		{"typo beside valid term", "severe headake", "severe headache", true, 1},
		{"multiple typos", "fevr and coughe", "fever and cough", true, 2},
		{"empty query", "", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := sc.Check(tt.query)
			if err != nil {
				t.Fatalf("Check(%q): %v", tt.query, err)
			}
			if result.CorrectedQuery != tt.wantCorrected {
				t.Errorf("CorrectedQuery = %q, want %q", result.CorrectedQuery, tt.wantCorrected)
			}
			if result.HasCorrections != tt.wantCorrects {
				t.Errorf("HasCorrections = %v, want %v", result.HasCorrections, tt.wantCorrects)
			}
			if len(result.MisspelledTerms) != tt.wantMisspelled {
				t.Errorf("MisspelledTerms = %v, want %d entries", result.MisspelledTerms, tt.wantMisspelled)
			}
		})
	}
}

func TestSpellChecker_SuggestRanksByFrequency(t *testing.T) {
	// All one edit from "couch"; the most frequent term wins.
	dict := NewVocabulary(map[string]int{
		"cough": 100,
		"touch": 10,
		"pouch": 5,
	})
	sc := NewSpellChecker(dict, WithMaxDistance(1))
	if err := sc.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache: %v", err)
	}

	suggestions := sc.Suggest("couch")
	if len(suggestions) < 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].Term != "cough" {
		t.Errorf("highest frequency term should rank first, got %q", suggestions[0].Term)
	}
}

func TestSpellChecker_SuggestRespectsMaxDistance(t *testing.T) {
	sc := NewSpellChecker(symptomDict(), WithMaxDistance(1))
	if err := sc.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache: %v", err)
	}
	// "headake" is two edits from "headache".
	if got := sc.Suggest("headake"); len(got) != 0 {
		t.Errorf("maxDistance=1 should not reach a 2-edit term, got %v", got)
	}
}

func TestSpellChecker_ShortTermsGetTighterBound(t *testing.T) {
	dict := NewVocabulary(map[string]int{"rash": 5})
	sc := NewSpellChecker(dict, WithMaxDistance(2))
	if err := sc.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache: %v", err)
	}
	// "gas" is two edits from "rash" but short terms only get one.
	if got := sc.Suggest("gas"); len(got) != 0 {
		t.Errorf("Suggest(gas) = %v, want none", got)
	}
	// One edit still corrects.
	got := sc.Suggest("rsh")
	if len(got) == 0 || got[0].Term != "rash" {
		t.Errorf("Suggest(rsh) = %v, want rash", got)
	}
}

func TestSpellChecker_SuggestRespectsMinFrequency(t *testing.T) {
	dict := NewVocabulary(map[string]int{
		"fever": 10,
		"sever": 1,
	})
	sc := NewSpellChecker(dict, WithMinFrequency(5))
	if err := sc.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache: %v", err)
	}
	for _, s := range sc.Suggest("fevar") {
		if s.Frequency < 5 {
			t.Errorf("suggestion %q has frequency %d, below minFreq 5", s.Term, s.Frequency)
		}
	}
}

func TestSpellChecker_SuggestLimitsResults(t *testing.T) {
	terms := make(map[string]int)
	for i := 0; i < 20; i++ {
		terms["rash"+string(rune('a'+i))] = 10
	}
	sc := NewSpellChecker(NewVocabulary(terms), WithMaxSuggestions(3))
	if err := sc.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache: %v", err)
	}
	if got := sc.Suggest("rash"); len(got) > 3 {
		t.Errorf("got %d suggestions, want at most 3", len(got))
	}
}

func TestSpellChecker_GetSuggestedQuery(t *testing.T) {
	sc := NewSpellChecker(symptomDict())

	tests := []struct {
		query string
		want  string
	}{
		{"fever cough", "fever cough"},
		{"fevr", "fever"},
		{"fevr coughe", "fever cough"},
		{"xyzzy", "xyzzy"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := sc.GetSuggestedQuery(tt.query); got != tt.want {
				t.Errorf("GetSuggestedQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestSpellChecker_DictionaryFailure(t *testing.T) {
	sc := NewSpellChecker(failingDictionary{})

	if err := sc.RefreshCache(); err == nil {
		t.Error("RefreshCache should surface dictionary errors")
	}
	if _, err := sc.Check("fevr"); err == nil {
		t.Error("Check should surface dictionary errors")
	}
	if got := sc.Suggest("fevr"); len(got) != 0 {
		t.Errorf("Suggest should return nothing on dictionary failure, got %v", got)
	}
	// The original query comes back untouched when the dictionary is down.
	if got := sc.GetSuggestedQuery("fevr"); got != "fevr" {
		t.Errorf("GetSuggestedQuery = %q, want original", got)
	}
}

func TestVocabulary(t *testing.T) {
	v := NewVocabulary(map[string]int{"fever": 3, "cough": 1})

	terms, err := v.GetAllTerms()
	if err != nil {
		t.Fatal(err)
	}
	if len(terms) != 2 {
		t.Errorf("GetAllTerms returned %d terms, want 2", len(terms))
	}
	if freq, _ := v.GetTermFrequency("fever"); freq != 3 {
		t.Errorf("GetTermFrequency(fever) = %d, want 3", freq)
	}
	if ok, _ := v.ContainsTerm("cough"); !ok {
		t.Error("ContainsTerm(cough) = false, want true")
	}
	if ok, _ := v.ContainsTerm("absent"); ok {
		t.Error("ContainsTerm(absent) = true, want false")
	}
}
