package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// OOXML packages (.docx, .pptx) are ZIP archives of XML parts. Text sits in
// <w:t> runs for Word and <a:t> runs for PowerPoint; pulling the runs keeps
// content searchable regardless of paragraph or run attributes.

const (
	docxDocumentXMLPath = "word/document.xml"
	contentTypesPath    = "[Content_Types].xml"
	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	pptxSlidePathPrefix = "ppt/slides/slide"
)

var (
	// wtTag matches <w:t>text</w:t> with any attributes on the opening tag.
	wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	// atTag matches <a:t>text</a:t> with any attributes on the opening tag.
	atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)
	// partNameRe variants extract the main document PartName from
	// [Content_Types].xml in either attribute order.
	partNameRe  = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)
)

// readZipFile returns the contents of name inside the archive. The second
// return reports whether the entry exists.
func readZipFile(zr *zip.Reader, name string) ([]byte, bool, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, true, fmt.Errorf("open %s: %w", name, err)
		}
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		rc.Close()
		if err != nil {
			return nil, true, fmt.Errorf("read %s: %w", name, err)
		}
		return buf.Bytes(), true, nil
	}
	return nil, false, nil
}

// joinMatches appends the first capture group of each match, space-separated.
func joinMatches(b *strings.Builder, parts [][]string) {
	for _, p := range parts {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimSpace(p[1]))
	}
}

// findDocxMainDocumentPath reads [Content_Types].xml to locate the main
// document part. Returns the path without leading slash, or "" if not found.
func findDocxMainDocumentPath(zr *zip.Reader) string {
	data, found, err := readZipFile(zr, contentTypesPath)
	if err != nil || !found {
		return ""
	}
	content := string(data)
	if m := partNameRe.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	if m := partNameRe2.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	return ""
}

// extractDOCX extracts text from .docx bytes.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}

	docPath := findDocxMainDocumentPath(zr)
	if docPath == "" {
		docPath = docxDocumentXMLPath
	}
	docXML, found, err := readZipFile(zr, docPath)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: %w", err)
	}
	if !found {
		return "", fmt.Errorf("extract DOCX: %s not found", docPath)
	}

	var b strings.Builder
	joinMatches(&b, wtTag.FindAllStringSubmatch(string(docXML), -1))
	return strings.TrimSpace(b.String()), nil
}

// extractPPTX extracts text from .pptx bytes, walking every slide.
func extractPPTX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract PPTX: not a zip: %w", err)
	}
	var b strings.Builder
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, pptxSlidePathPrefix) || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("extract PPTX: open %s: %w", f.Name, err)
		}
		var slideBuf bytes.Buffer
		_, err = slideBuf.ReadFrom(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("extract PPTX: read %s: %w", f.Name, err)
		}
		joinMatches(&b, atTag.FindAllStringSubmatch(slideBuf.String(), -1))
	}
	return strings.TrimSpace(b.String()), nil
}
