package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("Diabetes overview\nSecond line"), ".txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Diabetes overview\nSecond line" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("fever\x80chart"), ".md")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "fever�chart" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_unknownExtensionFallsBackToPlain(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("raw notes"), ".xyz")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "raw notes" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Symptom")
	f.SetCellValue("Sheet1", "A2", "Fever")
	f.SetCellValue("Sheet1", "B2", "38.5C")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	e := NewExtractor()
	got, err := e.ExtractBytes(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Symptom\nFever\t38.5C" {
		t.Errorf("got %q", got)
	}
}

// minimalDocx builds a .docx zip whose word/document.xml carries text in <w:t> runs.
func minimalDocx(text string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

func TestExtractBytes_docx(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes(minimalDocx("Managing type 2 diabetes"), ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Managing type 2 diabetes" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxCustomDocumentPath(t *testing.T) {
	// [Content_Types].xml points the main part at word/document2.xml.
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	ct, _ := w.Create("[Content_Types].xml")
	_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override PartName="/word/document2.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`))
	fw, _ := w.Create("word/document2.xml")
	_, _ = fw.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>Relocated body</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()

	e := NewExtractor()
	got, err := e.ExtractBytes(buf.Bytes(), ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Relocated body" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxContentTypesReversedAttributes(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	ct, _ := w.Create("[Content_Types].xml")
	_, _ = ct.Write([]byte(`<Types><Override ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml" PartName="/word/document3.xml"/></Types>`))
	fw, _ := w.Create("word/document3.xml")
	_, _ = fw.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>Reversed attributes</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()

	e := NewExtractor()
	got, err := e.ExtractBytes(buf.Bytes(), ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Reversed attributes" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxNotZip(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes([]byte("not a zip"), ".docx"); err == nil {
		t.Error("expected error for invalid docx")
	}
}

// minimalPptx builds a .pptx zip with one slide carrying text in <a:t> runs.
func minimalPptx(text string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("ppt/slides/slide1.xml")
	_, _ = fw.Write([]byte(`<p:sld><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`))
	_ = w.Close()
	return buf.Bytes()
}

func TestExtractBytes_pptx(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes(minimalPptx("Hypertension basics"), ".pptx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Hypertension basics" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_pptxMultipleSlides(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	slide1, _ := w.Create("ppt/slides/slide1.xml")
	_, _ = slide1.Write([]byte(`<p:sld><a:t>First slide</a:t></p:sld>`))
	slide2, _ := w.Create("ppt/slides/slide2.xml")
	_, _ = slide2.Write([]byte(`<p:sld><a:t>Second slide</a:t></p:sld>`))
	_ = w.Close()

	e := NewExtractor()
	got, err := e.ExtractBytes(buf.Bytes(), ".pptx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "First slide Second slide" {
		t.Errorf("got %q", got)
	}
}

// minimalOpenDoc builds an OpenDocument zip with the given content.xml body.
func minimalOpenDoc(contentXML string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("content.xml")
	_, _ = fw.Write([]byte(contentXML))
	_ = w.Close()
	return buf.Bytes()
}

func TestExtractBytes_openDocumentFormats(t *testing.T) {
	contentXML := `<office:document><office:body><text:p>Asthma action plan</text:p></office:body></office:document>`
	e := NewExtractor()
	for _, ext := range []string{".odt", ".odp", ".ods"} {
		t.Run(ext, func(t *testing.T) {
			got, err := e.ExtractBytes(minimalOpenDoc(contentXML), ext)
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != "Asthma action plan" {
				t.Errorf("got %q", got)
			}
		})
	}
}

func TestExtractBytes_openDocumentSpansAndHeadings(t *testing.T) {
	contentXML := `<office:document><office:body><text:h>Allergies</text:h><text:p>Pollen triggers</text:p><text:span>seasonal</text:span></office:body></office:document>`
	e := NewExtractor()
	got, err := e.ExtractBytes(minimalOpenDoc(contentXML), ".odt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	// Paragraphs first, then spans, then headings.
	if got != "Pollen triggers seasonal Allergies" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_openDocumentMissingContent(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, _ = w.Create("other.xml")
	_ = w.Close()
	e := NewExtractor()
	if _, err := e.ExtractBytes(buf.Bytes(), ".odp"); err == nil {
		t.Error("expected error when content.xml missing")
	}
}

func TestExtract_plainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("Immunization schedule"), 0600); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor()
	got, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Immunization schedule" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_docxFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.docx")
	if err := os.WriteFile(path, minimalDocx("Wound care basics"), 0600); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor()
	got, err := e.Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Wound care basics" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_nonexistentFile(t *testing.T) {
	e := NewExtractor()
	if _, err := e.Extract("/nonexistent/path/file.txt"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}
