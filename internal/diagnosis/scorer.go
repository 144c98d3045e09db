package diagnosis

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/medioracle/medirag/internal/models"
	"github.com/medioracle/medirag/internal/safety"
	"github.com/medioracle/medirag/pkg/utils"
)

const (
	defaultTopConditions = 5
	maxEvidenceRefs      = 3
	evidenceExcerptLen   = 100

	minConditionConfidence = 0.2
	maxConditionConfidence = 0.95
)

// Scorer ranks candidate conditions for a symptom list, combining retrieval
// evidence with the rule tables. Emergency detection runs through the safety
// guard and always takes precedence over scoring.
type Scorer struct {
	guard  *safety.Guard
	topN   int
	logger *zap.Logger
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithTopConditions bounds the number of returned suggestions.
func WithTopConditions(n int) ScorerOption {
	return func(s *Scorer) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ScorerOption {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScorer creates a scorer backed by guard. The guard is mandatory: without
// emergency detection the scorer must not run at all.
func NewScorer(guard *safety.Guard, opts ...ScorerOption) (*Scorer, error) {
	if guard == nil {
		return nil, fmt.Errorf("diagnosis scorer requires a safety guard")
	}
	s := &Scorer{
		guard:  guard,
		topN:   defaultTopConditions,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RetrievalQuery builds the search text used to fetch evidence for a
// diagnosis request.
func RetrievalQuery(req models.DiagnoseRequest) string {
	var b strings.Builder
	b.WriteString("Patient reporting symptoms: ")
	b.WriteString(strings.Join(req.Symptoms, ", "))
	b.WriteString(".")
	if req.Age > 0 {
		fmt.Fprintf(&b, " Age: %d.", req.Age)
	}
	if req.Gender != "" {
		fmt.Fprintf(&b, " Gender: %s.", req.Gender)
	}
	if req.DurationDays > 0 {
		fmt.Fprintf(&b, " Duration: %d days.", req.DurationDays)
	}
	return b.String()
}

// Diagnose produces the full assessment: severity, risk, ranked conditions,
// and recommendations. On emergency the severity pins to 100/CRITICAL and a
// certainty-level override suggestion is placed first, ahead of whatever the
// evidence scoring produced.
func (s *Scorer) Diagnose(req models.DiagnoseRequest, evidence []models.SearchResult) models.DiagnosisResponse {
	emergency := s.anyEmergency(req.Symptoms)
	severity := SeverityScore(req.Symptoms)
	risk := RiskLevel(severity)
	if emergency {
		severity = 100
		risk = "CRITICAL"
		s.logger.Warn("emergency indicators in diagnosis request",
			zap.Strings("symptoms", req.Symptoms))
	}

	conditions := s.Score(req.Symptoms, evidence)
	if emergency {
		conditions = append([]models.ConditionSuggestion{emergencyOverride()}, conditions...)
		if len(conditions) > s.topN {
			conditions = conditions[:s.topN]
		}
	}

	resp := models.DiagnosisResponse{
		Success:            true,
		IsEmergency:        emergency,
		SeverityScore:      severity,
		RiskLevel:          risk,
		PossibleConditions: conditions,
		Recommendations:    Recommendations(risk, emergency),
		WhenToSeekHelp:     WhenToSeekHelp(),
		Disclaimer:         safety.MedicalDisclaimer,
	}
	if emergency {
		resp.Message = safety.EmergencyMessage
	}
	return resp
}

// Score ranks candidate conditions for symptoms given retrieval evidence.
// Evidence scoring runs first; with no accumulated evidence the direct
// symptom rules apply; failing those, a single low-confidence referral
// suggestion is returned. Never empty.
func (s *Scorer) Score(symptoms []string, evidence []models.SearchResult) []models.ConditionSuggestion {
	suggestions := scoreFromEvidence(evidence)
	if len(suggestions) == 0 {
		suggestions = fallbackSuggestions(symptoms)
	}
	if len(suggestions) == 0 {
		suggestions = []models.ConditionSuggestion{{
			Condition:  lastResortCondition,
			Confidence: minConditionConfidence,
			Rationale:  lastResortRationale,
		}}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	if len(suggestions) > s.topN {
		suggestions = suggestions[:s.topN]
	}
	return suggestions
}

// AnalyzeSymptoms is the retrieval-free rule assessment. Emergencies return
// the fixed escalation payload instead of an analysis.
func (s *Scorer) AnalyzeSymptoms(symptoms []string) models.SymptomAnalysis {
	if s.anyEmergency(symptoms) {
		s.logger.Warn("emergency indicators in symptom analysis",
			zap.Strings("symptoms", symptoms))
		return models.SymptomAnalysis{
			SeverityScore:   100,
			RiskLevel:       "CRITICAL",
			IsEmergency:     true,
			Message:         safety.EmergencyMessage,
			Recommendations: []string{emergencyRecommendation},
			Disclaimer:      safety.MedicalDisclaimer,
		}
	}

	severity := SeverityScore(symptoms)
	risk := RiskLevel(severity)
	analysis := make(map[string]string, len(symptoms))
	for _, sym := range symptoms {
		analysis[sym] = analysisFor(sym)
	}
	return models.SymptomAnalysis{
		SeverityScore:    severity,
		RiskLevel:        risk,
		IsEmergency:      false,
		SymptomsAnalysis: analysis,
		Recommendations:  Recommendations(risk, false),
		Disclaimer:       safety.MedicalDisclaimer,
	}
}

func (s *Scorer) anyEmergency(symptoms []string) bool {
	for _, sym := range symptoms {
		if s.guard.DetectEmergency(sym) {
			return true
		}
	}
	return false
}

func emergencyOverride() models.ConditionSuggestion {
	return models.ConditionSuggestion{
		Condition:  "Medical emergency requiring immediate care",
		Confidence: 1.0,
		Rationale:  "Emergency indicators detected in the reported symptoms. Call 911 or go to the nearest emergency room.",
	}
}

// conditionScore accumulates evidence for one condition profile across chunks.
type conditionScore struct {
	profile  *conditionProfile
	score    float64
	matched  map[string]bool
	sources  map[string]bool
	evidence []models.EvidenceRef
}

// scoreFromEvidence weighs keyword occurrences in each retrieved chunk by the
// chunk's similarity and folds them into per-condition scores. Confidence is
// score/(1+score), bounded away from both zero and certainty.
func scoreFromEvidence(evidence []models.SearchResult) []models.ConditionSuggestion {
	if len(evidence) == 0 {
		return nil
	}

	scores := make([]*conditionScore, len(conditionProfiles))
	for _, result := range evidence {
		lowered := strings.ToLower(result.Content)
		for i := range conditionProfiles {
			profile := &conditionProfiles[i]
			occurrences := 0
			for _, k := range profile.keywords {
				if n := strings.Count(lowered, k); n > 0 {
					occurrences += n
					if scores[i] == nil {
						scores[i] = &conditionScore{
							profile: profile,
							matched: make(map[string]bool),
							sources: make(map[string]bool),
						}
					}
					scores[i].matched[k] = true
				}
			}
			if occurrences == 0 {
				continue
			}
			sc := scores[i]
			sc.score += float64(occurrences) * result.Similarity
			if !sc.sources[result.Metadata.Source] && len(sc.evidence) < maxEvidenceRefs {
				sc.sources[result.Metadata.Source] = true
				sc.evidence = append(sc.evidence, models.EvidenceRef{
					Source:  result.Metadata.Source,
					Excerpt: utils.Truncate(utils.NormalizeWhitespace(result.Content), evidenceExcerptLen),
				})
			}
		}
	}

	var suggestions []models.ConditionSuggestion
	for _, sc := range scores {
		if sc == nil || sc.score <= 0 {
			continue
		}
		suggestions = append(suggestions, models.ConditionSuggestion{
			Condition:  sc.profile.condition,
			Confidence: utils.Clamp(sc.score/(1+sc.score), minConditionConfidence, maxConditionConfidence),
			Rationale:  fmt.Sprintf("%s. Indicators found in referenced material: %s.", sc.profile.info, strings.Join(sc.matchedKeywords(), ", ")),
			Sources:    sc.evidence,
		})
	}
	return suggestions
}

// matchedKeywords lists the matched keywords in profile order, keeping
// rationales deterministic.
func (sc *conditionScore) matchedKeywords() []string {
	out := make([]string, 0, len(sc.matched))
	for _, k := range sc.profile.keywords {
		if sc.matched[k] {
			out = append(out, k)
		}
	}
	return out
}

// fallbackSuggestions applies the direct symptom rules: a rule fires when all
// of its keywords occur somewhere in the combined symptom text.
func fallbackSuggestions(symptoms []string) []models.ConditionSuggestion {
	combined := strings.ToLower(strings.Join(symptoms, " "))
	var suggestions []models.ConditionSuggestion
	for _, rule := range fallbackRules {
		all := true
		for _, k := range rule.keywords {
			if !strings.Contains(combined, k) {
				all = false
				break
			}
		}
		if all {
			suggestions = append(suggestions, models.ConditionSuggestion{
				Condition:  rule.condition,
				Confidence: rule.confidence,
				Rationale:  rule.info,
			})
		}
	}
	return suggestions
}
