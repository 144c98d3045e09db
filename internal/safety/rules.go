// Package safety provides the emergency detection and response constraint
// layer that gates every answer the engine produces.
package safety

// MedicalDisclaimer is appended to every synthesized response that does not
// already carry it.
const MedicalDisclaimer = `
⚠️ IMPORTANT MEDICAL DISCLAIMER

This information is for educational purposes only and does NOT constitute medical advice.
It is not a substitute for professional medical diagnosis, treatment, or consultation.

🚨 SEEK IMMEDIATE EMERGENCY CARE FOR:
- Chest pain or pressure
- Difficulty breathing
- Loss of consciousness
- Severe bleeding or trauma
- Poisoning or overdose
- Signs of stroke
- Severe allergic reactions

Always consult a qualified healthcare provider for proper evaluation and treatment.
`

// EmergencyMessage is the fixed response body returned whenever emergency
// language is detected. Identical on every invocation.
const EmergencyMessage = "🚨 EMERGENCY DETECTED 🚨\n\n" +
	"Your symptoms may indicate a medical emergency.\n\n" +
	"📞 CALL 911 IMMEDIATELY or go to the nearest emergency room.\n\n" +
	"DO NOT DELAY. Seek immediate professional medical care."

// DisclaimerHeaderValue is sent on every HTTP response.
const DisclaimerHeaderValue = "Educational information only. Not medical advice."

// RewritePattern is a diagnostic-assertion pattern and its hedged rewrite.
// Find is a regular expression; ReplaceWith may reference capture groups.
type RewritePattern struct {
	Find        string
	ReplaceWith string
}

// Rules holds the data tables the guard operates on. Tables are plain data
// so they stay independently testable and extensible.
type Rules struct {
	// EmergencyPhrases trigger on any single occurrence in the input.
	EmergencyPhrases []string
	// CompoundPatterns trigger when both phrases occur, in any order.
	CompoundPatterns [][2]string
	// DiagnosticRewrites soften assertive diagnostic phrasing.
	DiagnosticRewrites []RewritePattern
	// ConsultNote is appended when a response never mentions consulting
	// a professional.
	ConsultNote string
	// Disclaimer is appended when a response does not already carry one.
	Disclaimer string
}

// DefaultRules returns the built-in rule tables.
func DefaultRules() Rules {
	return Rules{
		EmergencyPhrases: []string{
			"chest pain",
			"severe breathing difficulty",
			"loss of consciousness",
			"severe bleeding",
			"internal bleeding",
			"vomiting blood",
			"poisoning",
			"anaphylaxis",
			"stroke symptoms",
			"cardiac arrest",
			"severe trauma",
			"overdose",
			"uncontrolled seizure",
		},
		CompoundPatterns: [][2]string{
			{"internal bleeding", "high fever"},
			{"difficulty breathing", "blue lips"},
			{"severe headache", "stiff neck"},
			{"confusion", "high fever"},
		},
		DiagnosticRewrites: []RewritePattern{
			{
				Find:        `(?i)\byou have ([a-zA-Z][a-zA-Z -]{2,40})`,
				ReplaceWith: `these symptoms might be associated with $1, but only a qualified professional can diagnose it`,
			},
			{
				Find:        `(?i)\byou(?:'re| are) suffering from ([a-zA-Z][a-zA-Z -]{2,40})`,
				ReplaceWith: `these symptoms might be associated with $1, but only a qualified professional can diagnose it`,
			},
			{
				Find:        `(?i)\b(?:the |your )?diagnosis is ([a-zA-Z][a-zA-Z -]{2,40})`,
				ReplaceWith: `only a qualified professional can make a diagnosis; these symptoms might be associated with $1`,
			},
		},
		ConsultNote: "Please consult a healthcare professional for personalized medical advice.",
		Disclaimer:  MedicalDisclaimer,
	}
}
