package chunker

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "   ", nil},
		{"no terminator is one sentence", "diabetes overview notes", []string{"diabetes overview notes"}},
		{"basic split", "First. Second? Third!", []string{"First.", "Second?", "Third!"}},
		{"terminator runs stay attached", "Wait... really?! Yes.", []string{"Wait...", "really?!", "Yes."}},
		{"trailing text without terminator", "Done. trailing words", []string{"Done.", "trailing words"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestChunker_OverlapSeedsNextChunk(t *testing.T) {
	text := "Diabetes causes increased thirst. Patients often feel fatigue. Regular monitoring is advised."
	c := NewChunker(45, 15)
	chunks := c.Chunk(text, "diabetes.txt")
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if len(chunks[0].Content) > 45 {
		t.Errorf("first chunk length %d exceeds budget", len(chunks[0].Content))
	}
	// The second chunk starts with the overlap window taken from the end of the first.
	if !strings.HasPrefix(chunks[1].Content, "Diabetes causes increased thirst.") {
		t.Errorf("second chunk should begin with overlap text, got %q", chunks[1].Content)
	}
	for i, ch := range chunks {
		if ch.Metadata.ChunkIndex != i {
			t.Errorf("chunk %d index = %d", i, ch.Metadata.ChunkIndex)
		}
		if ch.Metadata.TotalChunks != len(chunks) {
			t.Errorf("chunk %d total = %d, want %d", i, ch.Metadata.TotalChunks, len(chunks))
		}
		if ch.Metadata.Source != "diabetes.txt" {
			t.Errorf("chunk %d source = %q", i, ch.Metadata.Source)
		}
		if ch.Content == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}

func TestChunker_ReconstructsSentenceSequence(t *testing.T) {
	text := "One sentence here. Another follows now. A third one too. Then a fourth. Finally the fifth."
	sentences := SplitSentences(text)
	c := NewChunker(40, 10)
	chunks := c.Chunk(text, "doc")

	// Walking the chunks and skipping overlap-duplicated prefixes must yield
	// the original sentence sequence.
	var rebuilt []string
	for _, ch := range chunks {
		for _, s := range SplitSentences(ch.Content) {
			if len(rebuilt) > 0 && rebuilt[len(rebuilt)-1] == s {
				continue
			}
			if contains(rebuilt, s) {
				continue
			}
			rebuilt = append(rebuilt, s)
		}
	}
	if !reflect.DeepEqual(rebuilt, sentences) {
		t.Errorf("rebuilt = %v, want %v", rebuilt, sentences)
	}
}

func TestChunker_ZeroOverlapSharesNoSentence(t *testing.T) {
	text := "Alpha statement one. Beta statement two. Gamma statement three. Delta statement four."
	c := NewChunker(45, 0)
	chunks := c.Chunk(text, "doc")
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := SplitSentences(chunks[i-1].Content)
		cur := SplitSentences(chunks[i].Content)
		for _, s := range cur {
			if contains(prev, s) {
				t.Errorf("chunks %d and %d share sentence %q with zero overlap", i-1, i, s)
			}
		}
	}
}

func TestChunker_OversizedSentenceEmittedWhole(t *testing.T) {
	long := "This single sentence is far longer than the configured chunk budget and must never be split in the middle."
	text := long + " Short one."
	c := NewChunker(30, 0)
	chunks := c.Chunk(text, "doc")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != long {
		t.Errorf("oversized sentence was split: %q", chunks[0].Content)
	}
}

func TestChunker_EmptyText(t *testing.T) {
	c := NewChunker(500, 100)
	if chunks := c.Chunk("   \n\t ", "doc"); chunks != nil {
		t.Errorf("blank text should produce no chunks, got %v", chunks)
	}
}

func TestChunker_SingleChunk(t *testing.T) {
	c := NewChunker(500, 100)
	chunks := c.Chunk("Fits in one chunk. Easily so.", "doc")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Metadata.TotalChunks != 1 {
		t.Errorf("total = %d", chunks[0].Metadata.TotalChunks)
	}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
