package extract

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Extractor converts a raw document stream into plain text suitable for
// structural chunking.
type Extractor interface {
	// Extract reads the document and returns its full text. size is the
	// total byte length of the stream; extractors that need random access
	// (PDF) rely on it.
	Extract(r io.ReaderAt, size int64) (string, error)
}

// ForFile returns the extractor responsible for the given filename, chosen
// by extension.
func ForFile(filename string) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return &PDFExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".txt", ".text", "":
		return &TextExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported document type: %s", filepath.Ext(filename))
	}
}

// TextExtractor passes plain text through unchanged.
type TextExtractor struct{}

// Extract reads the full stream as UTF-8 text.
func (e *TextExtractor) Extract(r io.ReaderAt, size int64) (string, error) {
	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, 0); err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read text document: %w", err)
	}
	return string(buf), nil
}
