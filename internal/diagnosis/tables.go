// Package diagnosis scores symptom lists against rule tables and retrieved
// evidence. Everything here is educational guidance; the tables deliberately
// steer toward professional evaluation rather than naming a diagnosis.
package diagnosis

import "strings"

// severityEntry maps a symptom phrase to a 0-100 severity score.
type severityEntry struct {
	phrase string
	score  int
}

// severityTable is scanned in order and the first phrase contained in the
// symptom text wins, so specific phrases must precede general ones. Symptoms
// matching nothing score the baseline.
var severityTable = []severityEntry{
	{"chest pain", 95},
	{"difficulty breathing", 90},
	{"loss of consciousness", 100},
	{"severe bleeding", 95},

	{"severe headache", 75},
	{"high fever", 80},
	{"severe abdominal pain", 85},
	{"paralysis", 90},

	{"moderate fever", 55},
	{"cough", 45},
	{"mild headache", 25},
	{"diarrhea", 50},
	{"fatigue", 40},
	{"nausea", 45},

	{"runny nose", 15},
	{"itching", 10},
	{"mild rash", 30},
}

const severityBaseline = 20

// riskLevels classify a severity score, checked in order.
var riskLevels = []struct {
	level    string
	min, max int
}{
	{"CRITICAL", 90, 100},
	{"HIGH", 70, 89},
	{"MEDIUM", 40, 69},
	{"LOW", 0, 39},
}

// symptomAnalysisRules provide the per-symptom educational note. First
// matching keyword wins.
var symptomAnalysisRules = []struct {
	keyword string
	text    string
}{
	{"fever", "Elevated body temperature may indicate infection, inflammation, or other medical condition"},
	{"cough", "Respiratory symptom that may indicate viral/bacterial infection or other respiratory condition"},
	{"headache", "Head pain that can have many causes including tension, migraines, or underlying conditions"},
	{"fatigue", "General weakness or exhaustion that may indicate infection, sleep issues, or other conditions"},
	{"pain", "Localized or general pain requiring proper medical evaluation"},
}

const defaultSymptomAnalysis = "Symptom requiring professional medical evaluation"

var baseRecommendations = []string{
	"Consult a qualified healthcare provider for proper evaluation",
	"Keep track of symptom progression and duration",
	"Follow basic health precautions (hygiene, rest, hydration)",
}

const (
	promptCareRecommendation = "⚠️ Seek medical attention promptly"
	emergencyRecommendation  = "🚨 SEEK EMERGENCY CARE IMMEDIATELY (Call 911 or go to ER)"
)

var whenToSeekHelp = []string{
	"Symptoms worsen or don't improve",
	"New or unusual symptoms develop",
	"Difficulty breathing or chest pain",
	"Loss of consciousness",
	"Severe pain",
	"High fever (above 103°F / 39.4°C)",
}

// conditionProfile describes one candidate condition and the keywords whose
// presence in retrieved text counts as evidence for it.
type conditionProfile struct {
	condition string
	keywords  []string
	info      string
}

var conditionProfiles = []conditionProfile{
	{
		condition: "Upper respiratory infection (common cold or flu)",
		keywords:  []string{"fever", "cough", "congestion", "sore throat", "runny nose", "influenza", "flu"},
		info:      "Common viral illness affecting the nose and throat",
	},
	{
		condition: "Lower respiratory infection (bronchitis or pneumonia)",
		keywords:  []string{"cough", "chest", "breathing", "phlegm", "pneumonia", "bronchitis", "wheezing"},
		info:      "Infection of the airways or lungs",
	},
	{
		condition: "Migraine or tension headache",
		keywords:  []string{"headache", "migraine", "aura", "light sensitivity", "tension"},
		info:      "Recurrent head pain with many possible triggers",
	},
	{
		condition: "Gastrointestinal infection (gastroenteritis)",
		keywords:  []string{"nausea", "vomiting", "diarrhea", "stomach", "abdominal", "dehydration"},
		info:      "Inflammation of the digestive tract, often infectious",
	},
	{
		condition: "Seasonal allergies (allergic rhinitis)",
		keywords:  []string{"sneezing", "allergy", "allergies", "pollen", "watery eyes", "itchy"},
		info:      "Immune response to environmental allergens",
	},
	{
		condition: "Viral illness or systemic infection",
		keywords:  []string{"fever", "fatigue", "aches", "chills", "weakness", "malaise"},
		info:      "General infection affecting the whole body",
	},
	{
		condition: "Skin condition (dermatitis or allergic reaction)",
		keywords:  []string{"rash", "itching", "hives", "skin", "redness", "swelling"},
		info:      "Skin inflammation from irritants, allergens, or infection",
	},
	{
		condition: "Dehydration or heat-related illness",
		keywords:  []string{"dizziness", "thirst", "dehydration", "heat exhaustion", "dry mouth", "lightheaded"},
		info:      "Fluid loss exceeding fluid intake",
	},
}

// fallbackRule suggests a condition directly from symptom wording when
// retrieval produced no usable evidence. A rule fires only when every keyword
// appears in the combined symptom text.
type fallbackRule struct {
	keywords   []string
	condition  string
	confidence float64
	info       string
}

var fallbackRules = []fallbackRule{
	{
		keywords:   []string{"fever", "cough"},
		condition:  "Possible respiratory infection (viral or bacterial)",
		confidence: 0.7,
		info:       "Common symptoms include fever, cough, fatigue",
	},
	{
		keywords:   []string{"headache", "fever"},
		condition:  "Possible viral illness or infection",
		confidence: 0.5,
		info:       "Often associated with flu or other infectious diseases",
	},
	{
		keywords:   []string{"chest pain"},
		condition:  "Multiple possible causes - requires emergency evaluation",
		confidence: 0.3,
		info:       "Can indicate heart problems or other serious conditions",
	},
	{
		keywords:   []string{"severe headache"},
		condition:  "Possible tension headache, migraine, or serious condition",
		confidence: 0.5,
		info:       "Requires professional evaluation to determine cause",
	},
}

const (
	lastResortCondition = "Requires professional medical evaluation"
	lastResortRationale = "Consult a healthcare provider for proper diagnosis"
)

// VocabularyWords pools the distinct lowercase words from every rule table,
// weighted by how often each word occurs across them. Spell checkers use this
// as the domain dictionary for correcting symptom input.
func VocabularyWords() map[string]int {
	words := make(map[string]int)
	add := func(text string) {
		for _, w := range strings.Fields(strings.ToLower(text)) {
			w = strings.Trim(w, "(),.-/")
			if len(w) > 2 {
				words[w]++
			}
		}
	}
	for _, e := range severityTable {
		add(e.phrase)
	}
	for _, p := range conditionProfiles {
		add(p.condition)
		for _, k := range p.keywords {
			add(k)
		}
	}
	for _, r := range fallbackRules {
		for _, k := range r.keywords {
			add(k)
		}
	}
	for _, r := range symptomAnalysisRules {
		add(r.keyword)
	}
	return words
}
