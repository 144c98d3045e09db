// Package cli renders engine responses for terminal output.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/medioracle/medirag/internal/models"
)

// OutputFormat selects how responses are rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const divider = "─────────────────────────────────────────────────────────"

// WriteQueryResponse writes a query answer to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteQueryResponse(w io.Writer, response *models.QueryResponse, format OutputFormat) error {
	if format == OutputJSON {
		return encodeJSON(w, response)
	}
	writeQueryText(w, response)
	return nil
}

func writeQueryText(w io.Writer, response *models.QueryResponse) {
	fmt.Fprintf(w, "\n%s\n", response.Response)
	fmt.Fprintf(w, "\nConfidence: %.2f\n", response.Confidence)
	if len(response.SourcesUsed) > 0 {
		fmt.Fprintln(w, "\n--- Sources ---")
		for i, src := range response.SourcesUsed {
			fmt.Fprintln(w, divider)
			fmt.Fprintf(w, "[%d] %s | Similarity: %s\n", i+1, src.Source, src.Similarity)
			fmt.Fprintf(w, "\n%s\n", Truncate(src.Excerpt, 200))
			fmt.Fprintln(w)
		}
	}
}

// WriteDiagnosisResponse writes a symptom assessment to w in the given format.
func WriteDiagnosisResponse(w io.Writer, response *models.DiagnosisResponse, format OutputFormat) error {
	if format == OutputJSON {
		return encodeJSON(w, response)
	}
	writeDiagnosisText(w, response)
	return nil
}

func writeDiagnosisText(w io.Writer, response *models.DiagnosisResponse) {
	fmt.Fprintf(w, "\nSeverity: %d/100 | Risk level: %s\n", response.SeverityScore, response.RiskLevel)
	if response.Message != "" {
		fmt.Fprintf(w, "\n%s\n", response.Message)
	}
	if len(response.PossibleConditions) > 0 {
		fmt.Fprintln(w, "\n--- Possible conditions (educational, not a diagnosis) ---")
		for i, cond := range response.PossibleConditions {
			fmt.Fprintln(w, divider)
			fmt.Fprintf(w, "%d. %s (confidence %.2f)\n", i+1, cond.Condition, cond.Confidence)
			if cond.Rationale != "" {
				fmt.Fprintf(w, "   %s\n", cond.Rationale)
			}
			for _, ev := range cond.Sources {
				fmt.Fprintf(w, "   source: %s: %s\n", ev.Source, TruncateWords(ev.Excerpt, 25))
			}
		}
	}
	if len(response.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, rec := range response.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
	if len(response.WhenToSeekHelp) > 0 {
		fmt.Fprintln(w, "\nSeek medical help if:")
		for _, item := range response.WhenToSeekHelp {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
	fmt.Fprintf(w, "\n%s\n", response.Disclaimer)
}

// WriteIngestResult writes an ingestion summary to w in the given format.
func WriteIngestResult(w io.Writer, result *models.IngestResult, format OutputFormat) error {
	if format == OutputJSON {
		return encodeJSON(w, result)
	}
	fmt.Fprintf(w, "Ingested %s: %d chunks (document %s)\n",
		result.SourceName, result.ChunksCreated, result.DocumentID)
	fmt.Fprintf(w, "Index now holds %d chunks from %d sources\n",
		result.Stats.TotalDocuments, result.Stats.TotalSources)
	return nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
