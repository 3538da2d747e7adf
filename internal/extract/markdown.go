package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor flattens markdown into plain text. Each heading is
// emitted as its own line directly above the block it introduces, and
// unrelated blocks stay blank-line separated, so the structural chunker
// still sees the document's line structure.
type MarkdownExtractor struct {
	parser goldmark.Markdown
}

// Extract parses the markdown AST and renders its textual content.
func (e *MarkdownExtractor) Extract(r io.ReaderAt, size int64) (string, error) {
	src := make([]byte, size)
	if _, err := r.ReadAt(src, 0); err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read markdown document: %w", err)
	}

	if e.parser == nil {
		e.parser = goldmark.New()
	}
	doc := e.parser.Parser().Parse(text.NewReader(src))

	var buf strings.Builder
	afterHeading := false

	// A heading is glued to the block below it with a single newline; a
	// paragraph break would detach the heading from its own prose.
	separate := func() {
		if buf.Len() == 0 {
			return
		}
		if afterHeading {
			buf.WriteString("\n")
		} else {
			buf.WriteString("\n\n")
		}
	}

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			separate()
			afterHeading = true
		case *ast.Paragraph, *ast.ListItem:
			separate()
			afterHeading = false
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteString("\n")
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			separate()
			afterHeading = false
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk markdown ast: %w", err)
	}

	return buf.String(), nil
}
