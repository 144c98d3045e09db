package models

import "strings"

// QueryRequest is a free-text question against the ingested corpus.
type QueryRequest struct {
	Query string `json:"query"`
}

// Validate ensures the query is non-blank.
func (q *QueryRequest) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return &ValidationError{Field: "query", Reason: "must not be empty"}
	}
	return nil
}

// DiagnoseRequest asks for condition suggestions from a symptom list.
// Age, Gender, and DurationDays are optional demographic context.
type DiagnoseRequest struct {
	Symptoms     []string `json:"symptoms"`
	Age          int      `json:"age,omitempty"`
	Gender       string   `json:"gender,omitempty"`
	DurationDays int      `json:"duration_days,omitempty"`
}

// Validate ensures at least one non-blank symptom and normalizes the list
// by trimming whitespace and dropping blank entries.
func (d *DiagnoseRequest) Validate() error {
	cleaned := make([]string, 0, len(d.Symptoms))
	for _, s := range d.Symptoms {
		if t := strings.TrimSpace(s); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return &ValidationError{Field: "symptoms", Reason: "must contain at least one symptom"}
	}
	d.Symptoms = cleaned
	if d.Age < 0 || d.Age > 150 {
		return &ValidationError{Field: "age", Reason: "must be between 0 and 150"}
	}
	if d.DurationDays < 0 {
		return &ValidationError{Field: "duration_days", Reason: "must not be negative"}
	}
	return nil
}

// IngestRequest submits raw document text for indexing.
type IngestRequest struct {
	SourceName string `json:"source_name"`
	Content    string `json:"content"`
}

// Validate ensures content is non-blank and defaults the source name.
func (i *IngestRequest) Validate() error {
	if strings.TrimSpace(i.Content) == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if strings.TrimSpace(i.SourceName) == "" {
		i.SourceName = "untitled"
	}
	return nil
}
