package chunker

import "github.com/medioracle/medirag/pkg/utils"

// Normalize collapses every whitespace run in the text to a single space, so
// wrapped or indented source documents chunk the same as flat prose.
func Normalize(text string) string {
	return utils.NormalizeWhitespace(text)
}
