package chunker

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"blank", " \t\n ", ""},
		{"already clean", "fever and chills", "fever and chills"},
		{"wrapped lines", "fever\nand\nchills", "fever and chills"},
		{"mixed runs", "  fever \t\t and\n\n chills  ", "fever and chills"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestChunker_NormalizesBeforeSplitting(t *testing.T) {
	c := NewChunker(500, 100)
	chunks := c.Chunk("Fever is common.\n\n  Rest helps\trecovery.", "doc")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	want := "Fever is common. Rest helps recovery."
	if chunks[0].Content != want {
		t.Errorf("content = %q, want %q", chunks[0].Content, want)
	}
}
