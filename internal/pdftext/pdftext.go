// Package pdftext extracts the text layer of a PDF as one flat string, which
// is all the classifier needs from a shipping label.
package pdftext

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Extractor reads PDF text. It tries the Go library first,
// then falls back to pdftotext if available.
type Extractor struct {
	FallbackPdftotext bool
}

// Text returns the concatenated text of all pages, whitespace-trimmed.
// A PDF without a text layer yields an empty string, not an error.
func (e *Extractor) Text(path string) (string, error) {
	text, err := extractPDFText(path)
	if err != nil && e.FallbackPdftotext {
		text, err = extractPdftotext(path)
	}
	if err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", path, err)
	}
	return strings.TrimSpace(text), nil
}

// PageCount returns the number of pages via pdfcpu.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("page count %s: %w", path, err)
	}
	return n, nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
