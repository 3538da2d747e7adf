package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks intelliclause/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"fmt"
)

// DocumentStore defines the interface for document metadata operations.
type DocumentStore interface {
	// Upsert inserts a document record or refreshes its metadata.
	Upsert(ctx context.Context, doc *Document) error
	// GetByID gets a document by its ID. Returns ErrNotFound if missing.
	GetByID(ctx context.Context, id string) (*Document, error)
	// Exists reports whether a document with the given ID is stored.
	Exists(ctx context.Context, id string) (bool, error)
	// ListAll returns all documents ordered by creation time.
	ListAll(ctx context.Context) ([]*Document, error)
	// Delete removes a document; chunks cascade.
	Delete(ctx context.Context, id string) error
}

// DocumentRepo provides methods for document operations. It implements the
// DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// DB exposes the underlying database handle for stats queries.
func (r *DocumentRepo) DB() *sql.DB {
	return r.db
}

// Upsert inserts a document record or refreshes its metadata.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *Document) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, file_name, content_hash) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET file_name = excluded.file_name, content_hash = excluded.content_hash`,
		doc.ID, doc.FileName, doc.ContentHash,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// GetByID gets a document by its ID. Returns ErrNotFound if missing.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*Document, error) {
	var doc Document
	err := r.db.QueryRowContext(ctx,
		"SELECT id, file_name, content_hash, created_at FROM documents WHERE id = ?",
		id,
	).Scan(&doc.ID, &doc.FileName, &doc.ContentHash, &doc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	return &doc, nil
}

// Exists reports whether a document with the given ID is stored.
func (r *DocumentRepo) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE id = ?", id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check document existence: %w", err)
	}
	return count > 0, nil
}

// ListAll returns all documents ordered by creation time.
func (r *DocumentRepo) ListAll(ctx context.Context) ([]*Document, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, file_name, content_hash, created_at FROM documents ORDER BY created_at",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.FileName, &doc.ContentHash, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// Delete removes a document; chunks cascade via the foreign key.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
