package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxChunkSize is the maximum size of an emitted chunk in runes.
	// Buffers larger than this are split at paragraph, then sentence, then
	// word boundaries.
	DefaultMaxChunkSize = 1200

	// pathSeparator joins heading labels when rendering a hierarchy path.
	pathSeparator = " > "
)

// StructuralChunker splits raw document text into ordered chunks tagged
// with a human-meaningful section label. Heading detection drives the
// labeling where the document has discernible structure; a deterministic
// size-based fallback handles unheaded prose.
//
// A StructuralChunker is a pure, synchronous transformation with no shared
// state: it is safe to call ChunkText concurrently on independent documents.
type StructuralChunker struct {
	maxChunkSize int
}

// New returns a StructuralChunker with the default maximum chunk size.
func New() *StructuralChunker {
	return NewWithMaxChunkSize(DefaultMaxChunkSize)
}

// NewWithMaxChunkSize returns a StructuralChunker with a custom maximum
// chunk size in runes. Non-positive sizes fall back to the default.
func NewWithMaxChunkSize(size int) *StructuralChunker {
	if size <= 0 {
		size = DefaultMaxChunkSize
	}
	return &StructuralChunker{maxChunkSize: size}
}

// ChunkText scans the full document text and returns the ordered chunk
// sequence. Whitespace-only input yields zero chunks; callers treat that as
// an upstream ingestion failure, not a chunker error. All other inputs,
// however irregular, produce a deterministic non-empty result.
//
// Heading lines are not copied into chunk text: the marker becomes part of
// the chunk's section number instead, and any trailing title or clause text
// on the heading line is folded into the body. A blank line closes the
// current section, so prose separated from its heading by a paragraph break
// is labeled by the fallback segmenter.
func (c *StructuralChunker) ChunkText(text string) []Chunk {
	var (
		chunks      []Chunk
		path        []Marker
		buf         strings.Builder
		fallbackSeq int // synthetic chunk numbering within the current unheaded run
	)

	flush := func() {
		body := strings.TrimSpace(buf.String())
		buf.Reset()
		if body == "" {
			return
		}
		pieces := c.splitBySize(body)
		if len(path) > 0 {
			section := renderPath(path)
			for _, piece := range pieces {
				chunks = append(chunks, Chunk{Text: piece, SectionNumber: section, OrderIndex: len(chunks)})
			}
			return
		}
		for _, piece := range pieces {
			fallbackSeq++
			chunks = append(chunks, Chunk{
				Text:          piece,
				SectionNumber: fmt.Sprintf("chunk_%d", fallbackSeq),
				OrderIndex:    len(chunks),
			})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		// A paragraph break flushes the open section and closes the path.
		if trimmed == "" {
			flush()
			path = path[:0]
			continue
		}

		marker, rest, ok := recognizeMarker(trimmed)
		if !ok {
			buf.WriteString(trimmed)
			buf.WriteString("\n")
			continue
		}

		flush()
		path = truncatePath(path, marker.Level)
		path = append(path, marker)
		fallbackSeq = 0
		if rest != "" {
			buf.WriteString(rest)
			buf.WriteString("\n")
		}
	}

	flush()
	return chunks
}

// truncatePath discards all markers at level >= level, so a new "Article"
// resets its sub-levels and a new "2.2" replaces "2.1" while keeping the
// enclosing article.
func truncatePath(path []Marker, level int) []Marker {
	for i, m := range path {
		if m.Level >= level {
			return path[:i]
		}
	}
	return path
}

// renderPath joins the active marker labels into a section number string.
func renderPath(path []Marker) string {
	labels := make([]string, len(path))
	for i, m := range path {
		labels[i] = m.Label
	}
	return strings.Join(labels, pathSeparator)
}

// splitBySize breaks body text into pieces no larger than the configured
// maximum, preferring paragraph boundaries, then sentences, then words.
// A single indivisible token longer than the maximum is emitted whole;
// truncation is never applied.
func (c *StructuralChunker) splitBySize(text string) []string {
	if utf8.RuneCountInString(text) <= c.maxChunkSize {
		return []string{text}
	}

	var pieces []string
	var cur strings.Builder
	curLen := 0

	emit := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			pieces = append(pieces, s)
		}
		cur.Reset()
		curLen = 0
	}

	for _, para := range splitParagraphs(text) {
		paraLen := utf8.RuneCountInString(para)
		if paraLen > c.maxChunkSize {
			emit()
			pieces = append(pieces, c.splitOversizedParagraph(para)...)
			continue
		}
		if curLen > 0 && curLen+paraLen+2 > c.maxChunkSize {
			emit()
		}
		if curLen > 0 {
			cur.WriteString("\n\n")
			curLen += 2
		}
		cur.WriteString(para)
		curLen += paraLen
	}
	emit()
	return pieces
}

// splitOversizedParagraph splits a single paragraph that exceeds the
// maximum size at sentence boundaries, falling back to word packing for a
// sentence that is itself too long.
func (c *StructuralChunker) splitOversizedParagraph(para string) []string {
	var pieces []string
	var cur strings.Builder
	curLen := 0

	emit := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			pieces = append(pieces, s)
		}
		cur.Reset()
		curLen = 0
	}

	for _, sent := range splitSentences(para) {
		sentLen := utf8.RuneCountInString(sent)
		if sentLen > c.maxChunkSize {
			emit()
			pieces = append(pieces, c.splitByWords(sent)...)
			continue
		}
		if curLen > 0 && curLen+sentLen+1 > c.maxChunkSize {
			emit()
		}
		if curLen > 0 {
			cur.WriteString(" ")
			curLen++
		}
		cur.WriteString(sent)
		curLen += sentLen
	}
	emit()
	return pieces
}

// splitByWords packs whitespace-separated words into maximally sized
// pieces. A word longer than the maximum becomes its own piece.
func (c *StructuralChunker) splitByWords(text string) []string {
	var pieces []string
	var cur strings.Builder
	curLen := 0

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)
		if curLen > 0 && curLen+wordLen+1 > c.maxChunkSize {
			pieces = append(pieces, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteString(" ")
			curLen++
		}
		cur.WriteString(word)
		curLen += wordLen
	}
	if cur.Len() > 0 {
		pieces = append(pieces, cur.String())
	}
	return pieces
}

// splitParagraphs splits text on blank-line boundaries, dropping empty
// paragraphs.
func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences is a simple sentence tokeniser: it splits after
// period/question-mark/exclamation followed by whitespace or end of input.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '?' || runes[i] == '!' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				if s := strings.TrimSpace(cur.String()); s != "" {
					sentences = append(sentences, s)
				}
				cur.Reset()
			}
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
