package diagnosis

import (
	"strings"

	"github.com/medioracle/medirag/pkg/utils"
)

// SeverityScore computes a 0-100 severity for a symptom list. Each symptom is
// scored by the first matching table phrase (baseline 20 when nothing
// matches), then blended 60% average with 40% worst so the most severe
// symptom dominates without erasing the rest.
func SeverityScore(symptoms []string) int {
	if len(symptoms) == 0 {
		return 0
	}
	sum, worst := 0, 0
	for _, s := range symptoms {
		score := severityFor(s)
		sum += score
		if score > worst {
			worst = score
		}
	}
	average := float64(sum) / float64(len(symptoms))
	final := int(average*0.6 + float64(worst)*0.4)
	return int(utils.Clamp(float64(final), 0, 100))
}

func severityFor(symptom string) int {
	lowered := strings.ToLower(symptom)
	for _, e := range severityTable {
		if strings.Contains(lowered, e.phrase) {
			return e.score
		}
	}
	return severityBaseline
}

// RiskLevel classifies a severity score into CRITICAL, HIGH, MEDIUM, or LOW.
func RiskLevel(score int) string {
	for _, r := range riskLevels {
		if score >= r.min && score <= r.max {
			return r.level
		}
	}
	return "LOW"
}

// Recommendations assembles the advice list for a risk level, most urgent
// first.
func Recommendations(riskLevel string, emergency bool) []string {
	recs := make([]string, 0, len(baseRecommendations)+2)
	if emergency {
		recs = append(recs, emergencyRecommendation)
	}
	if riskLevel == "HIGH" || riskLevel == "CRITICAL" {
		recs = append(recs, promptCareRecommendation)
	}
	return append(recs, baseRecommendations...)
}

// WhenToSeekHelp returns the standing escalation guidance.
func WhenToSeekHelp() []string {
	out := make([]string, len(whenToSeekHelp))
	copy(out, whenToSeekHelp)
	return out
}

func analysisFor(symptom string) string {
	lowered := strings.ToLower(symptom)
	for _, r := range symptomAnalysisRules {
		if strings.Contains(lowered, r.keyword) {
			return r.text
		}
	}
	return defaultSymptomAnalysis
}
