package models

// SourceRef cites one retrieved chunk inside a query response. Similarity is
// formatted to three decimals for stable display.
type SourceRef struct {
	Source     string `json:"source"`
	Similarity string `json:"similarity"`
	Excerpt    string `json:"excerpt"`
}

// QueryResponse is the answer to a free-text query.
type QueryResponse struct {
	Success     bool        `json:"success"`
	Response    string      `json:"response"`
	SourcesUsed []SourceRef `json:"sources_used"`
	Confidence  float64     `json:"confidence"`
	TokensUsed  int         `json:"tokens_used,omitempty"`
	IsEmergency bool        `json:"is_emergency,omitempty"`
}

// EvidenceRef cites a source excerpt that contributed to a condition score.
type EvidenceRef struct {
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
}

// ConditionSuggestion is one ranked candidate condition with its supporting
// evidence. Suggestions are educational, never diagnostic.
type ConditionSuggestion struct {
	Condition  string        `json:"condition"`
	Confidence float64       `json:"confidence"`
	Rationale  string        `json:"rationale"`
	Sources    []EvidenceRef `json:"sources,omitempty"`
}

// DiagnosisResponse is the result of symptom-to-condition scoring.
type DiagnosisResponse struct {
	Success            bool                  `json:"success"`
	IsEmergency        bool                  `json:"is_emergency"`
	SeverityScore      int                   `json:"severity_score"`
	RiskLevel          string                `json:"risk_level"`
	Message            string                `json:"message,omitempty"`
	PossibleConditions []ConditionSuggestion `json:"possible_conditions"`
	Recommendations    []string              `json:"recommendations"`
	WhenToSeekHelp     []string              `json:"when_to_seek_help,omitempty"`
	Disclaimer         string                `json:"disclaimer"`
}

// SymptomAnalysis is the rule-only assessment of a symptom list, with no
// retrieval behind it.
type SymptomAnalysis struct {
	SeverityScore    int               `json:"severity_score"`
	RiskLevel        string            `json:"risk_level"`
	IsEmergency      bool              `json:"is_emergency"`
	Message          string            `json:"message,omitempty"`
	SymptomsAnalysis map[string]string `json:"symptoms_analysis,omitempty"`
	Recommendations  []string          `json:"recommendations"`
	Disclaimer       string            `json:"disclaimer"`
}
