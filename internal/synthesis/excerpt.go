package synthesis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/medioracle/medirag/internal/chunker"
	"github.com/medioracle/medirag/pkg/utils"
)

// QueryKeywords extracts matching keywords from a free-text query: case-folded
// words longer than two characters with surrounding punctuation stripped,
// deduplicated in order of first appearance.
func QueryKeywords(query string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(w) <= 2 || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	return keywords
}

// BuildExcerpt selects the chunk sentences that mention at least one keyword
// as a whole word. When no sentence matches, it falls back to a window around
// the first substring occurrence of any keyword, or the head of the chunk when
// the keywords never occur. The result is bounded to maxLen bytes with
// ellipsis markers on truncation.
func BuildExcerpt(content string, keywords []string, maxLen int) string {
	content = utils.NormalizeWhitespace(content)
	if content == "" {
		return ""
	}
	if maxLen <= 0 {
		maxLen = defaultExcerptLength
	}

	var matched []string
	for _, sentence := range chunker.SplitSentences(content) {
		if sentenceHasKeyword(sentence, keywords) {
			matched = append(matched, sentence)
		}
	}
	if len(matched) > 0 {
		return utils.Truncate(strings.Join(matched, " "), maxLen)
	}
	return keywordWindow(content, keywords, maxLen)
}

// sentenceHasKeyword reports whether any keyword appears in the sentence as a
// standalone word.
func sentenceHasKeyword(sentence string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	for _, field := range strings.Fields(strings.ToLower(sentence)) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, k := range keywords {
			if word == k {
				return true
			}
		}
	}
	return false
}

// keywordWindow cuts a maxLen window centered on the earliest substring
// occurrence of any keyword. Without an occurrence the window starts at the
// head of the content.
func keywordWindow(content string, keywords []string, maxLen int) string {
	lowered := strings.ToLower(content)
	first := -1
	for _, k := range keywords {
		if idx := strings.Index(lowered, k); idx >= 0 && (first < 0 || idx < first) {
			first = idx
		}
	}
	if first < 0 {
		return utils.Truncate(content, maxLen)
	}

	start := first - maxLen/2
	if start < 0 {
		start = 0
	}
	end := start + maxLen
	if end >= len(content) {
		end = len(content)
		if start > end-maxLen && end-maxLen >= 0 {
			start = end - maxLen
		}
	}
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}

	out := content[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(content) {
		out += "..."
	}
	return out
}
