// Package docfile extracts plain text from stored PDF and DOCX documents.
// Every failure is typed (domain.ErrUnsupportedFormat, ErrCorruptDocument,
// ErrEmptyDocument) so the pipeline can record a precise failure reason.
package docfile

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/legal-intel/internal/core/domain"
	"github.com/kirillkom/legal-intel/internal/core/ports"
)

// Text below these lengths is treated as "no extractable text": scanned PDFs
// without an OCR layer typically yield a handful of stray glyphs.
const (
	minPDFTextLen  = 50
	minDOCXTextLen = 10
)

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	return ExtractBytes(doc.Filename, raw)
}

// ExtractBytes converts a document payload into plain text based on the
// filename extension, verifying magic bytes before handing the payload to a
// parser.
func ExtractBytes(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".pdf":
		if !isPDF(data) {
			return "", domain.WrapError(domain.ErrCorruptDocument, "sniff pdf",
				fmt.Errorf("%s: missing %%PDF header", filename))
		}
		return extractPDF(filename, data)
	case ".docx":
		if !isZip(data) {
			return "", domain.WrapError(domain.ErrCorruptDocument, "sniff docx",
				fmt.Errorf("%s: not a zip container", filename))
		}
		return extractDOCX(filename, data)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract text",
			fmt.Errorf("%s: extension %q is not pdf or docx", filename, ext))
	}
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isZip(b []byte) bool {
	return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

func extractPDF(filename string, data []byte) (text string, err error) {
	// The pdf parser panics on some corrupt xref tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = domain.WrapError(domain.ErrCorruptDocument, "parse pdf",
				fmt.Errorf("%s: parser panic: %v", filename, r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, "parse pdf",
			fmt.Errorf("%s: %w", filename, err))
	}

	var out strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			// A single unreadable page does not fail the document.
			continue
		}
		out.WriteString(pageText)
		out.WriteString("\n")
	}

	text = collapseWhitespace(out.String())
	if len(text) < minPDFTextLen {
		return "", domain.WrapError(domain.ErrEmptyDocument, "parse pdf",
			fmt.Errorf("%s: extracted %d characters", filename, len(text)))
	}
	return text, nil
}

func extractDOCX(filename string, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, "parse docx",
			fmt.Errorf("%s: %w", filename, err))
	}

	var docXML *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML = f
			break
		}
	}
	if docXML == nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, "parse docx",
			fmt.Errorf("%s: word/document.xml not present", filename))
	}

	rc, err := docXML.Open()
	if err != nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, "parse docx",
			fmt.Errorf("%s: %w", filename, err))
	}
	defer rc.Close()

	text, err := textRuns(rc)
	if err != nil {
		return "", domain.WrapError(domain.ErrCorruptDocument, "parse docx",
			fmt.Errorf("%s: %w", filename, err))
	}

	text = collapseWhitespace(text)
	if len(text) < minDOCXTextLen {
		return "", domain.WrapError(domain.ErrEmptyDocument, "parse docx",
			fmt.Errorf("%s: extracted %d characters", filename, len(text)))
	}
	return text, nil
}

// textRuns streams word/document.xml and gathers <w:t> runs, which covers
// paragraphs and table cells alike without materializing the DOM.
func textRuns(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var out strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "t" {
			continue
		}
		var run string
		if err := dec.DecodeElement(&run, &se); err != nil {
			return "", err
		}
		if run != "" {
			out.WriteString(run)
			out.WriteString(" ")
		}
	}
	return out.String(), nil
}

func collapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
