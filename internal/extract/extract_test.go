package extract

import (
	"bytes"
	"strings"
	"testing"

	"intelliclause/internal/chunker"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantType string
		wantErr  bool
	}{
		{name: "pdf", filename: "policy.pdf", wantType: "*extract.PDFExtractor"},
		{name: "pdf upper case", filename: "POLICY.PDF", wantType: "*extract.PDFExtractor"},
		{name: "markdown", filename: "notes.md", wantType: "*extract.MarkdownExtractor"},
		{name: "plain text", filename: "terms.txt", wantType: "*extract.TextExtractor"},
		{name: "no extension", filename: "README", wantType: "*extract.TextExtractor"},
		{name: "unsupported", filename: "sheet.xlsx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ForFile(tt.filename)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ForFile(%q) expected error, got nil", tt.filename)
				}
				return
			}
			if err != nil {
				t.Fatalf("ForFile(%q) unexpected error: %v", tt.filename, err)
			}

			var gotType string
			switch e.(type) {
			case *PDFExtractor:
				gotType = "*extract.PDFExtractor"
			case *MarkdownExtractor:
				gotType = "*extract.MarkdownExtractor"
			case *TextExtractor:
				gotType = "*extract.TextExtractor"
			}
			if gotType != tt.wantType {
				t.Errorf("ForFile(%q) = %s, want %s", tt.filename, gotType, tt.wantType)
			}
		})
	}
}

func TestTextExtractor_Extract(t *testing.T) {
	content := "Article 1: Definitions\nSome body text."
	r := bytes.NewReader([]byte(content))

	got, err := (&TextExtractor{}).Extract(r, int64(len(content)))
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if got != content {
		t.Errorf("Extract() = %q, want %q", got, content)
	}
}

func TestMarkdownExtractor_Extract(t *testing.T) {
	md := "# Article 1\n\nFirst paragraph of the policy.\n\n- covered item\n- excluded item\n"
	r := bytes.NewReader([]byte(md))

	got, err := (&MarkdownExtractor{}).Extract(r, int64(len(md)))
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	for _, want := range []string{"Article 1", "First paragraph of the policy.", "covered item", "excluded item"} {
		if !strings.Contains(got, want) {
			t.Errorf("Extract() output missing %q; got %q", want, got)
		}
	}
	if strings.Contains(got, "#") || strings.Contains(got, "- ") {
		t.Errorf("Extract() left markdown syntax in output: %q", got)
	}
}

func TestMarkdownExtractor_Extract_HeadingStaysWithItsBlock(t *testing.T) {
	md := "## Article 1: Definitions\n\nIn this Policy, terms are defined below.\n\nAn unrelated second paragraph.\n"
	r := bytes.NewReader([]byte(md))

	got, err := (&MarkdownExtractor{}).Extract(r, int64(len(md)))
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}

	// A blank line between the heading and its paragraph would orphan the
	// heading once the text is chunked.
	if !strings.Contains(got, "Article 1: Definitions\nIn this Policy") {
		t.Errorf("Extract() detached the heading from its paragraph: %q", got)
	}
	if !strings.Contains(got, "defined below.\n\nAn unrelated second paragraph.") {
		t.Errorf("Extract() lost the paragraph break between prose blocks: %q", got)
	}

	chunks := chunker.New().ChunkText(got)
	sections := make(map[string]string, len(chunks))
	for _, c := range chunks {
		sections[c.SectionNumber] = c.Text
	}
	if body, ok := sections["Article 1"]; !ok {
		t.Fatalf("chunking extracted markdown produced no Article 1 section: %+v", chunks)
	} else if !strings.Contains(body, "In this Policy") {
		t.Errorf("Article 1 chunk text = %q, want the paragraph under the heading", body)
	}
}

func TestPDFExtractor_Extract_InvalidData(t *testing.T) {
	data := []byte("this is not a pdf")
	_, err := (&PDFExtractor{}).Extract(bytes.NewReader(data), int64(len(data)))
	if err == nil {
		t.Error("Extract() expected error for non-PDF data, got nil")
	}
}
