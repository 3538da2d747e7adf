package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts page text from PDF documents. Pages are joined
// with newlines, mirroring page-level assembly of the full document text.
type PDFExtractor struct{}

// Extract returns the concatenated plain text of every page. Pages whose
// text cannot be decoded are skipped rather than failing the whole
// document; a PDF with no extractable text at all is an error.
func (e *PDFExtractor) Extract(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	if strings.TrimSpace(buf.String()) == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}
	return buf.String(), nil
}
