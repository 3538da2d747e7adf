package storage

import (
	"context"
	"errors"
	"testing"
)

func TestDocumentRepo_UpsertAndGet(t *testing.T) {
	repo := NewDocumentRepo(testDB(t))
	ctx := context.Background()

	doc := &Document{
		ID:          "doc-1",
		FileName:    "policy.pdf",
		ContentHash: "abc123",
	}

	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}

	got, err := repo.GetByID(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.FileName != "policy.pdf" {
		t.Errorf("GetByID() FileName = %q, want %q", got.FileName, "policy.pdf")
	}
	if got.ContentHash != "abc123" {
		t.Errorf("GetByID() ContentHash = %q, want %q", got.ContentHash, "abc123")
	}
	if got.CreatedAt.IsZero() {
		t.Error("GetByID() CreatedAt is zero")
	}

	// Upsert with the same ID refreshes metadata instead of failing.
	doc.FileName = "policy_v2.pdf"
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() second call error: %v", err)
	}

	got, err = repo.GetByID(ctx, "doc-1")
	if err != nil {
		t.Fatalf("GetByID() after upsert error: %v", err)
	}
	if got.FileName != "policy_v2.pdf" {
		t.Errorf("GetByID() after upsert FileName = %q, want %q", got.FileName, "policy_v2.pdf")
	}
}

func TestDocumentRepo_GetByID_NotFound(t *testing.T) {
	repo := NewDocumentRepo(testDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_Exists(t *testing.T) {
	repo := NewDocumentRepo(testDB(t))
	ctx := context.Background()

	exists, err := repo.Exists(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Exists() error: %v", err)
	}
	if exists {
		t.Error("Exists() = true for missing document")
	}

	if err := repo.Upsert(ctx, &Document{ID: "doc-1", FileName: "a.txt", ContentHash: "h"}); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}

	exists, err = repo.Exists(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Exists() error: %v", err)
	}
	if !exists {
		t.Error("Exists() = false for stored document")
	}
}

func TestDocumentRepo_ListAll(t *testing.T) {
	repo := NewDocumentRepo(testDB(t))
	ctx := context.Background()

	docs, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("ListAll() returned %d documents, want 0", len(docs))
	}

	for _, id := range []string{"doc-1", "doc-2", "doc-3"} {
		if err := repo.Upsert(ctx, &Document{ID: id, FileName: id + ".txt", ContentHash: "h"}); err != nil {
			t.Fatalf("Upsert(%s) error: %v", id, err)
		}
	}

	docs, err = repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("ListAll() returned %d documents, want 3", len(docs))
	}
}

func TestDocumentRepo_Delete_CascadesChunks(t *testing.T) {
	db := testDB(t)
	docs := NewDocumentRepo(db)
	chunks := NewChunkRepo(db)
	ctx := context.Background()

	if err := docs.Upsert(ctx, &Document{ID: "doc-1", FileName: "a.txt", ContentHash: "h"}); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}
	if err := chunks.Insert(ctx, &ChunkRecord{ID: "chunk-1", DocumentID: "doc-1", SectionTitle: "Article 1", Text: "body"}); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	if err := docs.Delete(ctx, "doc-1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	_, err := chunks.GetByID(ctx, "chunk-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after cascade error = %v, want ErrNotFound", err)
	}
}
