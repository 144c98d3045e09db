package models

import (
	"errors"
	"testing"
)

func TestQueryRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{"valid", "what causes fever", false},
		{"empty", "", true},
		{"whitespace only", "   \t\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &QueryRequest{Query: tt.query}
			err := q.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("expected ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestDiagnoseRequest_Validate(t *testing.T) {
	d := &DiagnoseRequest{Symptoms: []string{"  fever ", "", "cough"}}
	if err := d.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(d.Symptoms) != 2 || d.Symptoms[0] != "fever" || d.Symptoms[1] != "cough" {
		t.Errorf("symptoms not normalized: %v", d.Symptoms)
	}
}

func TestDiagnoseRequest_ValidateEmpty(t *testing.T) {
	d := &DiagnoseRequest{Symptoms: []string{"", "  "}}
	if err := d.Validate(); err == nil {
		t.Error("expected error for blank symptom list")
	}
}

func TestDiagnoseRequest_ValidateAge(t *testing.T) {
	d := &DiagnoseRequest{Symptoms: []string{"fever"}, Age: 200}
	if err := d.Validate(); err == nil {
		t.Error("expected error for out-of-range age")
	}
}

func TestIngestRequest_Validate(t *testing.T) {
	r := &IngestRequest{Content: "some text"}
	if err := r.Validate(); err != nil {
		t.Fatal(err)
	}
	if r.SourceName != "untitled" {
		t.Errorf("source name should default, got %q", r.SourceName)
	}
	empty := &IngestRequest{SourceName: "x", Content: " "}
	if err := empty.Validate(); err == nil {
		t.Error("expected error for empty content")
	}
}
