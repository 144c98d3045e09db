package safety

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// EmergencyPayload is the constant high-priority response used when
// emergency language is detected. No randomness, no external calls.
type EmergencyPayload struct {
	Message    string
	Severity   int
	RiskLevel  string
	Confidence float64
	Disclaimer string
}

type rewriteRule struct {
	re          *regexp.Regexp
	replacement string
}

// Guard detects emergency language and enforces response constraints. All
// methods are pure functions over the compiled rules; detection never
// depends on retrieval results or external I/O.
type Guard struct {
	phrases     []string
	compounds   [][2]string
	rewrites    []rewriteRule
	consultNote string
	disclaimer  string
}

// NewGuard compiles the rule tables into a Guard. Construction fails when
// the tables cannot produce a working guard, so a misconfigured safety layer
// is caught at startup rather than silently passing unsafe responses.
func NewGuard(rules Rules) (*Guard, error) {
	if len(rules.EmergencyPhrases) == 0 {
		return nil, errors.New("safety guard requires at least one emergency phrase")
	}
	for i, p := range rules.EmergencyPhrases {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("emergency phrase %d is blank", i)
		}
	}
	for i, c := range rules.CompoundPatterns {
		if strings.TrimSpace(c[0]) == "" || strings.TrimSpace(c[1]) == "" {
			return nil, fmt.Errorf("compound pattern %d has a blank member", i)
		}
	}

	g := &Guard{
		compounds:   rules.CompoundPatterns,
		consultNote: rules.ConsultNote,
		disclaimer:  rules.Disclaimer,
	}
	for _, p := range rules.EmergencyPhrases {
		g.phrases = append(g.phrases, strings.ToLower(p))
	}
	for _, rw := range rules.DiagnosticRewrites {
		re, err := regexp.Compile(rw.Find)
		if err != nil {
			return nil, fmt.Errorf("compile rewrite pattern %q: %w", rw.Find, err)
		}
		g.rewrites = append(g.rewrites, rewriteRule{re: re, replacement: rw.ReplaceWith})
	}
	return g, nil
}

// DetectEmergency reports whether text contains any emergency phrase or any
// compound pattern. Matching is case-insensitive substring containment.
func (g *Guard) DetectEmergency(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range g.phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, pair := range g.compounds {
		if strings.Contains(lower, strings.ToLower(pair[0])) &&
			strings.Contains(lower, strings.ToLower(pair[1])) {
			return true
		}
	}
	return false
}

// EmergencyResponse returns the fixed emergency payload.
func (g *Guard) EmergencyResponse() EmergencyPayload {
	return EmergencyPayload{
		Message:    EmergencyMessage,
		Severity:   100,
		RiskLevel:  "CRITICAL",
		Confidence: 1.0,
		Disclaimer: g.disclaimer,
	}
}

// EnforceConstraints rewrites assertive diagnostic phrasing into hedged
// educational language, then appends the consult note and the disclaimer
// when they are not already present.
func (g *Guard) EnforceConstraints(text string) string {
	out := text
	for _, r := range g.rewrites {
		out = r.re.ReplaceAllString(out, r.replacement)
	}
	if g.consultNote != "" && !strings.Contains(strings.ToLower(out), "consult") {
		out += "\n\n" + g.consultNote
	}
	if g.disclaimer != "" && !strings.Contains(out, "MEDICAL DISCLAIMER") {
		out += "\n" + g.disclaimer
	}
	return out
}
