package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"intelliclause/internal/contextutil"
	"intelliclause/internal/indexer"
	"intelliclause/internal/storage"
)

// DocumentsHandler lists and deletes ingested documents.
type DocumentsHandler struct {
	docRepo  storage.DocumentStore
	pipeline *indexer.Pipeline
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(docRepo storage.DocumentStore, pipeline *indexer.Pipeline) *DocumentsHandler {
	return &DocumentsHandler{
		docRepo:  docRepo,
		pipeline: pipeline,
	}
}

// DocumentResponse represents one ingested document.
//
// swagger:model DocumentResponse
type DocumentResponse struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	CreatedAt string `json:"created_at"`
}

// DocumentListResponse wraps the document list.
//
// swagger:model DocumentListResponse
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// List handles GET /api/v1/documents.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := h.docRepo.ListAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, DocumentResponse{
			ID:        doc.ID,
			FileName:  doc.FileName,
			CreatedAt: doc.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: out})
}

// Delete handles DELETE /api/v1/documents/{id}. It removes the document, its
// chunks and its vector points.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	if _, err := h.docRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		logger.ErrorContext(ctx, "failed to load document", "document_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load document")
		return
	}

	if err := h.pipeline.DeleteDocument(ctx, id); err != nil {
		logger.ErrorContext(ctx, "failed to delete document", "document_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
