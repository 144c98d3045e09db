package utils

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"exactly max", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello..."},
		{"zero max returns unchanged", "hello", 0, "hello"},
		{"negative max returns unchanged", "hello", -1, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateWords(t *testing.T) {
	if got := TruncateWords("one two three four", 2); got != "one two..." {
		t.Errorf("got %q", got)
	}
	if got := TruncateWords("one two", 5); got != "one two" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	if got := NormalizeWhitespace("  a \t b\n\nc  "); got != "a b c" {
		t.Errorf("got %q", got)
	}
	if got := NormalizeWhitespace(""); got != "" {
		t.Errorf("got %q", got)
	}
}
