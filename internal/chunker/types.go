package chunker

// Chunk is a retrieval-sized unit of document text tagged with a structural
// address. Chunks are immutable once emitted and owned by the caller.
type Chunk struct {
	Text          string // accumulated body content, non-empty after trimming
	SectionNumber string // rendered heading path (e.g. "Article 2 > 2.1 > B") or "chunk_<n>" for unheaded segments
	OrderIndex    int    // 0-based position in the output sequence, equal to document reading order
}

// Marker is a recognized structural heading extracted from a single line.
// Markers are transient: they exist only between recognition and the
// hierarchy update for that line.
type Marker struct {
	Level int    // hierarchy depth: 0 for "Article N" and "N. Title", 1 for dotted clauses, 2 for letter sub-points
	Label string // the textual marker as it appeared ("Article 2", "2.1", "B")
}
