// Package chunker splits document text into overlapping sentence-aligned chunks.
package chunker

import (
	"strings"
	"time"

	"github.com/medioracle/medirag/internal/models"
)

// Chunker splits text into chunks bounded by a character budget, never
// breaking inside a sentence. Consecutive chunks share an overlap window of
// whole sentences so context survives the chunk boundary.
type Chunker struct {
	chunkSize   int
	overlapSize int
}

// NewChunker creates a chunker with the given character budgets. A
// non-positive chunk size falls back to 500; a negative overlap to 0.
func NewChunker(chunkSize, overlapSize int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlapSize < 0 {
		overlapSize = 0
	}
	return &Chunker{chunkSize: chunkSize, overlapSize: overlapSize}
}

// Chunk splits text into ordered chunks for the given source. Chunk metadata
// carries the source name, a 0-based index, and the total count. Embeddings
// and index IDs are assigned later by the ingestion pipeline.
//
// Sentences are accumulated into a buffer; when appending the next sentence
// would exceed the chunk size, the buffer is flushed and a new one starts
// with an overlap window of whole sentences from the end of the previous
// chunk. A single sentence longer than the chunk size is emitted whole.
func (c *Chunker) Chunk(text, source string) []models.Chunk {
	sentences := SplitSentences(Normalize(text))
	if len(sentences) == 0 {
		return nil
	}

	now := time.Now().UTC()
	var contents []string
	var buffer []string
	bufferLen := 0

	flush := func() {
		if bufferLen == 0 {
			return
		}
		contents = append(contents, strings.Join(buffer, " "))
		buffer = nil
		bufferLen = 0
	}

	for i, sentence := range sentences {
		if bufferLen > 0 && bufferLen+1+len(sentence) > c.chunkSize {
			flush()
			// Seed the new buffer with whole sentences from before the
			// triggering one until the overlap budget is met.
			overlap := c.overlapWindow(sentences, i)
			for _, s := range overlap {
				buffer = append(buffer, s)
				if bufferLen > 0 {
					bufferLen++
				}
				bufferLen += len(s)
			}
		}
		buffer = append(buffer, sentence)
		if bufferLen > 0 {
			bufferLen++
		}
		bufferLen += len(sentence)
	}
	flush()

	chunks := make([]models.Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = models.Chunk{
			Content: content,
			Metadata: models.ChunkMetadata{
				Source:      source,
				ChunkIndex:  i,
				TotalChunks: len(contents),
				CreatedAt:   now,
			},
		}
	}
	return chunks
}

// overlapWindow walks backward from sentences[next-1], collecting whole
// sentences until their combined length meets the overlap budget. Returned
// in original order.
func (c *Chunker) overlapWindow(sentences []string, next int) []string {
	if c.overlapSize <= 0 {
		return nil
	}
	var window []string
	total := 0
	for i := next - 1; i >= 0 && total < c.overlapSize; i-- {
		window = append([]string{sentences[i]}, window...)
		total += len(sentences[i])
	}
	return window
}

// sentenceTerminators end a sentence. A run of terminators (e.g. "?!", "...")
// stays attached to its sentence.
const sentenceTerminators = ".!?"

// SplitSentences splits text on sentence terminators, keeping each terminator
// run attached to its sentence and trimming surrounding whitespace. Text with
// no terminators is returned as a single sentence.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	var b strings.Builder
	inTerminator := false
	for _, r := range text {
		if strings.ContainsRune(sentenceTerminators, r) {
			b.WriteRune(r)
			inTerminator = true
			continue
		}
		if inTerminator {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
			inTerminator = false
		}
		b.WriteRune(r)
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
