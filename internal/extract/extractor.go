// Package extract provides plain-text extraction from the document formats a
// medical corpus directory may contain.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content. The format is
// chosen by extension; see ExtractBytes.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, strings.ToLower(filepath.Ext(path)))
}

// ExtractBytes extracts text from content based on the given extension, which
// includes the leading dot (e.g. ".pdf"). Plain text (.txt, .md, .rst) is
// returned as-is after UTF-8 validation; PDF, Word, PowerPoint, Excel, and
// OpenDocument formats are parsed. Unknown extensions fall back to plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".pptx":
		return extractPPTX(content)
	case ".xlsx":
		return extractExcel(content)
	case ".odt", ".odp", ".ods":
		return extractOpenDocument(content)
	default:
		return extractPlain(content)
	}
}
