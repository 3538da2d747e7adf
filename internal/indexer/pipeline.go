package indexer

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"intelliclause/internal/chunker"
	"intelliclause/internal/contextutil"
	"intelliclause/internal/storage"
	"intelliclause/internal/vectorstore"
)

var (
	// ErrEmptyDocument is returned when a document has no extractable text.
	ErrEmptyDocument = errors.New("document contains no extractable text")
	// ErrNoChunks is returned when chunking produced nothing to index.
	ErrNoChunks = errors.New("document produced no chunks")
)

// Embedder generates embedding vectors for a batch of texts.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// IngestResult summarizes the outcome of ingesting one document.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
	ChunkCount int    `json:"chunk_count"`
	Skipped    bool   `json:"skipped"`
}

// Pipeline orchestrates the ingestion of policy documents into SQLite and Qdrant.
type Pipeline struct {
	docRepo      storage.DocumentStore
	chunkRepo    storage.ChunkStore
	embedder     Embedder
	vectorStore  vectorstore.VectorStore
	collection   string
	chunker      *chunker.StructuralChunker
	maxChunkSize int
	logger       *slog.Logger
}

// NewPipeline creates a new ingestion pipeline. maxChunkSize of 0 uses the
// chunker's default.
func NewPipeline(
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	maxChunkSize int,
) *Pipeline {
	ck := chunker.New()
	if maxChunkSize > 0 {
		ck = chunker.NewWithMaxChunkSize(maxChunkSize)
	} else {
		maxChunkSize = chunker.DefaultMaxChunkSize
	}
	return &Pipeline{
		docRepo:      docRepo,
		chunkRepo:    chunkRepo,
		embedder:     embedder,
		vectorStore:  vectorStore,
		collection:   collection,
		chunker:      ck,
		maxChunkSize: maxChunkSize,
		logger:       slog.Default(),
	}
}

// getLogger prefers the request-scoped logger from the context.
func (p *Pipeline) getLogger(ctx context.Context) *slog.Logger {
	if logger := contextutil.LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return p.logger
}

// DocumentID derives the deterministic document ID for a text. The ID is a
// name-based UUID over the MD5 hex digest of the full text, so ingesting the
// same content twice always yields the same document.
func DocumentID(text string) (id string, contentHash string) {
	sum := md5.Sum([]byte(text))
	contentHash = fmt.Sprintf("%x", sum)
	id = uuid.NewSHA1(uuid.NameSpaceDNS, []byte(contentHash)).String()
	return id, contentHash
}

// IngestDocument chunks a document, embeds the chunks and stores them in both
// SQLite and Qdrant. Documents whose content is already fully indexed are
// skipped; a document left half-indexed by an earlier failure is re-ingested.
func (p *Pipeline) IngestDocument(ctx context.Context, fileName, text string) (*IngestResult, error) {
	logger := p.getLogger(ctx)

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	docID, contentHash := DocumentID(text)

	exists, err := p.docRepo.Exists(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to check document existence: %w", err)
	}

	if exists {
		oldChunkIDs, err := p.chunkRepo.ListIDsByDocument(ctx, docID)
		if err != nil {
			return nil, fmt.Errorf("failed to list existing chunk IDs: %w", err)
		}

		if len(oldChunkIDs) > 0 {
			logger.InfoContext(ctx, "document already indexed, skipping", "document_id", docID, "file_name", fileName, "chunks", len(oldChunkIDs))
			return &IngestResult{
				DocumentID: docID,
				FileName:   fileName,
				ChunkCount: len(oldChunkIDs),
				Skipped:    true,
			}, nil
		}

		// Document row exists without chunks: a previous ingest failed
		// midway. Fall through and index it again.
		logger.WarnContext(ctx, "document exists without chunks, re-ingesting", "document_id", docID, "file_name", fileName)
	}

	chunks := p.chunker.ChunkText(text)
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	chunkTexts := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkTexts[i] = chunk.Text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, chunkTexts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	doc := &storage.Document{
		ID:          docID,
		FileName:    fileName,
		ContentHash: contentHash,
	}
	if err := p.docRepo.Upsert(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to upsert document: %w", err)
	}

	chunkRecords := make([]*storage.ChunkRecord, len(chunks))
	points := make([]vectorstore.Point, len(chunks))

	for i, chunk := range chunks {
		chunkID := uuid.New().String()

		chunkRecords[i] = &storage.ChunkRecord{
			ID:           chunkID,
			DocumentID:   docID,
			ChunkIndex:   chunk.OrderIndex,
			SectionTitle: chunk.SectionNumber,
			Text:         chunk.Text,
		}

		points[i] = vectorstore.Point{
			ID:  chunkID,
			Vec: embeddings[i],
			Meta: map[string]any{
				"document_id":   docID,
				"file_name":     fileName,
				"chunk_id":      chunk.OrderIndex,
				"page_number":   0,
				"section_title": chunk.SectionNumber,
			},
		}
	}

	for _, chunkRecord := range chunkRecords {
		if err := p.chunkRepo.Insert(ctx, chunkRecord); err != nil {
			return nil, fmt.Errorf("failed to insert chunk: %w", err)
		}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return nil, fmt.Errorf("failed to upsert vectors: %w", err)
	}

	logger.InfoContext(ctx, "ingested document", "document_id", docID, "file_name", fileName, "chunks", len(chunks))
	return &IngestResult{
		DocumentID: docID,
		FileName:   fileName,
		ChunkCount: len(chunks),
	}, nil
}

// DeleteDocument removes a document, its chunks and its vector points.
func (p *Pipeline) DeleteDocument(ctx context.Context, documentID string) error {
	logger := p.getLogger(ctx)

	chunkIDs, err := p.chunkRepo.ListIDsByDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to list chunk IDs: %w", err)
	}

	if len(chunkIDs) > 0 {
		if err := p.vectorStore.Delete(ctx, p.collection, chunkIDs); err != nil {
			// SQLite stays authoritative; stale points get overwritten on
			// re-ingest.
			logger.WarnContext(ctx, "failed to delete points from Qdrant", "document_id", documentID, "count", len(chunkIDs), "error", err)
		}
	}

	if err := p.docRepo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	logger.InfoContext(ctx, "deleted document", "document_id", documentID, "chunks", len(chunkIDs))
	return nil
}
