package synthesis

import (
	"regexp"

	"github.com/medioracle/medirag/internal/chunker"
	"github.com/medioracle/medirag/pkg/utils"
)

// keyPointPatterns classify sentences into the facts worth surfacing from
// retrieved medical text, in presentation order.
var keyPointPatterns = []struct {
	label string
	re    *regexp.Regexp
}{
	{"Symptoms", regexp.MustCompile(`(?i)\b(?:symptoms?|signs\s+(?:of|include))\b`)},
	{"Causes", regexp.MustCompile(`(?i)\b(?:caused?\s+by|causes?|due\s+to|risk\s+factors?)\b`)},
	{"Treatment", regexp.MustCompile(`(?i)\b(?:treatments?|treated|therapy|medications?|managed\s+(?:with|by))\b`)},
	{"Prevention", regexp.MustCompile(`(?i)\b(?:prevent(?:ion|ed|able)?|avoid(?:ing)?|reduce\s+the\s+risk)\b`)},
	{"Diagnosis", regexp.MustCompile(`(?i)\b(?:diagnos(?:is|ed|tic|ing)|screening|blood\s+tests?)\b`)},
}

// ExtractKeyPoints scans text for sentences stating symptoms, causes,
// treatment, prevention, or diagnostic facts. At most one sentence is kept per
// category, labeled and in category order, capped at maxPoints.
func ExtractKeyPoints(text string, maxPoints int) []string {
	if maxPoints <= 0 {
		return nil
	}
	sentences := chunker.SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	used := make(map[string]bool)
	var points []string
	for _, p := range keyPointPatterns {
		if len(points) >= maxPoints {
			break
		}
		for _, sentence := range sentences {
			if used[sentence] || !p.re.MatchString(sentence) {
				continue
			}
			used[sentence] = true
			points = append(points, p.label+": "+utils.Truncate(sentence, keyPointLength))
			break
		}
	}
	return points
}
