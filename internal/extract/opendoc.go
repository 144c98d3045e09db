package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// OpenDocument formats (.odt, .odp, .ods) are ZIP archives whose body lives
// in content.xml. Text sits in text:p, text:span, and text:h elements across
// all three formats, so one extractor covers them.

const openDocContentPath = "content.xml"

var (
	odTextP    = regexp.MustCompile(`<text:p[^>]*>([^<]*)</text:p>`)
	odTextSpan = regexp.MustCompile(`<text:span[^>]*>([^<]*)</text:span>`)
	odTextH    = regexp.MustCompile(`<text:h[^>]*>([^<]*)</text:h>`)
)

// extractOpenDocument extracts text from OpenDocument bytes.
func extractOpenDocument(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract OpenDocument: not a zip: %w", err)
	}
	contentXML, found, err := readZipFile(zr, openDocContentPath)
	if err != nil {
		return "", fmt.Errorf("extract OpenDocument: %w", err)
	}
	if !found {
		return "", fmt.Errorf("extract OpenDocument: %s not found", openDocContentPath)
	}

	s := string(contentXML)
	var b strings.Builder
	joinMatches(&b, odTextP.FindAllStringSubmatch(s, -1))
	joinMatches(&b, odTextSpan.FindAllStringSubmatch(s, -1))
	joinMatches(&b, odTextH.FindAllStringSubmatch(s, -1))
	return strings.TrimSpace(b.String()), nil
}
