package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	ledongpdf "github.com/ledongthuc/pdf"
	"github.com/unidoc/unioffice/v2/document"
)

// Kind is the detected source format of an uploaded document.
type Kind string

const (
	KindPDF     Kind = "pdf"
	KindDocx    Kind = "docx"
	KindUnknown Kind = "unknown"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Result is the extracted text plus the detected format.
type Result struct {
	Text string
	Kind Kind
}

// FromBytes detects the file kind from the raw bytes and extracts its text.
// Unknown formats fall back to interpreting the bytes as UTF-8 text, which
// covers pasted .txt uploads. The text is returned raw; normalization is the
// analysis pipeline's job.
func FromBytes(data []byte) (*Result, error) {
	kind := detectKind(data)
	switch kind {
	case KindPDF:
		text, err := extractPDF(data)
		if err != nil {
			return nil, fmt.Errorf("failed to extract PDF text: %w", err)
		}
		return &Result{Text: text, Kind: kind}, nil
	case KindDocx:
		text, err := extractDocx(data)
		if err != nil {
			return nil, fmt.Errorf("failed to extract DOCX text: %w", err)
		}
		return &Result{Text: text, Kind: kind}, nil
	default:
		return &Result{Text: string(data), Kind: KindUnknown}, nil
	}
}

func detectKind(data []byte) Kind {
	m := mimetype.Detect(data)
	switch {
	case m.Is("application/pdf"):
		return KindPDF
	case m.Is(docxMIME):
		return KindDocx
	default:
		return KindUnknown
	}
}

// extractPDF pulls the text layer out of each page. Pages without a parsable
// text layer are skipped; image-only PDFs come back empty and the caller's
// minimum-length check rejects them.
func extractPDF(data []byte) (string, error) {
	reader, err := ledongpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// extractDocx concatenates the text runs of every paragraph and separates
// paragraphs with blank lines, the boundary the ranker splits on.
func extractDocx(data []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	paragraphs := make([]string, 0, len(doc.Paragraphs()))
	for _, p := range doc.Paragraphs() {
		var sb strings.Builder
		for _, r := range p.Runs() {
			sb.WriteString(r.Text())
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	return joinParagraphBlocks(paragraphs), nil
}

// joinParagraphBlocks assembles extracted paragraphs into ranker-ready text:
// one blank line between paragraphs, empties already filtered.
func joinParagraphBlocks(paragraphs []string) string {
	return strings.Join(paragraphs, "\n\n")
}
