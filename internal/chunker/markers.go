package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxHeadingLen bounds how long a line may be and still count as a bare
// numbered heading ("3. Exclusions"). Longer lines are ordinary prose that
// happens to start with a number.
const maxHeadingLen = 100

var (
	// "Article 2" or "Article 2: Coverage"
	articlePattern = regexp.MustCompile(`^(?i)(article)\s+(\d+)\s*(?::\s*(.*))?$`)

	// Dotted clause path of depth >= 2: "2.1", "2.1.3", optionally followed
	// by a period or whitespace and then text.
	clausePattern = regexp.MustCompile(`^(\d+(?:\.\d+)+)(?:\.?\s+(.*)|\.?)$`)

	// Bare top-level numbered section: "3. Exclusions"
	numberedPattern = regexp.MustCompile(`^\d+\.\s+\S.*$`)

	// Single uppercase letter sub-point: "A.", "B. Some text"
	letterPattern = regexp.MustCompile(`^([A-Z])\.(?:\s+(.*))?$`)
)

// markerMatcher inspects a trimmed line and reports the recognized heading
// marker plus the remainder of the line that belongs to body text.
type markerMatcher func(line string) (Marker, string, bool)

// matchers lists the recognized heading patterns in priority order; the
// first match wins, so more specific patterns come first.
var matchers = []markerMatcher{
	matchArticle,
	matchClause,
	matchNumbered,
	matchLetter,
}

// recognizeMarker classifies a line as a structural marker or body text.
// Recognition failure is the normal "not a heading" outcome, never an error.
func recognizeMarker(line string) (Marker, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Marker{}, "", false
	}
	for _, match := range matchers {
		if m, rest, ok := match(line); ok {
			return m, rest, true
		}
	}
	return Marker{}, "", false
}

// matchArticle recognizes "Article <n>" headings at level 0. A title after
// the colon is returned as body remainder.
func matchArticle(line string) (Marker, string, bool) {
	m := articlePattern.FindStringSubmatch(line)
	if m == nil {
		return Marker{}, "", false
	}
	return Marker{Level: 0, Label: m[1] + " " + m[2]}, strings.TrimSpace(m[3]), true
}

// matchClause recognizes dotted clause paths ("2.1") at level 1. The label
// is the dotted path exactly as matched; trailing text is body remainder.
func matchClause(line string) (Marker, string, bool) {
	m := clausePattern.FindStringSubmatch(line)
	if m == nil {
		return Marker{}, "", false
	}
	return Marker{Level: 1, Label: m[1]}, strings.TrimSpace(m[2]), true
}

// matchNumbered recognizes bare top-level numbered sections ("3. Exclusions")
// at level 0. The whole line is the label, so there is no body remainder.
// Lines too long to plausibly be a heading are left to the body text path.
func matchNumbered(line string) (Marker, string, bool) {
	if utf8.RuneCountInString(line) > maxHeadingLen {
		return Marker{}, "", false
	}
	if !numberedPattern.MatchString(line) {
		return Marker{}, "", false
	}
	return Marker{Level: 0, Label: line}, "", true
}

// matchLetter recognizes single uppercase letter sub-points ("A.") at
// level 2.
func matchLetter(line string) (Marker, string, bool) {
	m := letterPattern.FindStringSubmatch(line)
	if m == nil {
		return Marker{}, "", false
	}
	return Marker{Level: 2, Label: m[1]}, strings.TrimSpace(m[2]), true
}
