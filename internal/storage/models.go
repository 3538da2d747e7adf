package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Document represents an ingested policy document.
type Document struct {
	ID          string    // deterministic UUID derived from the document text
	FileName    string    // original file name, kept for citations
	ContentHash string    // MD5 hex of the full extracted text
	CreatedAt   time.Time
}

// ChunkRecord represents a stored chunk of a document, indexed for vector
// search. The ID doubles as the Qdrant point ID.
type ChunkRecord struct {
	ID           string // UUID
	DocumentID   string // foreign key to documents.id
	ChunkIndex   int    // 0-based order within the document
	SectionTitle string // structural address, e.g. "Article 2 > 2.1 > B" or "chunk_1"
	Text         string // chunk body
}
