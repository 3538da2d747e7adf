package handlers

import (
	"errors"
	"net/http"
	"strings"

	"intelliclause/internal/contextutil"
	"intelliclause/internal/extract"
	"intelliclause/internal/indexer"
)

// maxUploadBytes bounds multipart uploads (32 MiB).
const maxUploadBytes = 32 << 20

// IngestHandler handles document upload and ingestion.
type IngestHandler struct {
	pipeline *indexer.Pipeline
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(pipeline *indexer.Pipeline) *IngestHandler {
	return &IngestHandler{
		pipeline: pipeline,
	}
}

// IngestResponse represents the result of a document upload.
//
// swagger:model IngestResponse
type IngestResponse struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
	Chunks     int    `json:"chunks"`
	Skipped    bool   `json:"skipped,omitempty"`
}

// ServeHTTP handles multipart document uploads.
//
// swagger:route POST /api/v1/documents ingestDocument
//
// # Upload and ingest a policy document
//
// Accepts a multipart form with a "file" part (PDF, markdown or plain text),
// extracts its text, chunks it and indexes the chunks for retrieval.
//
// responses:
//
//	'201':
//	  description: Document ingested
//	  schema:
//	    "$ref": "#/definitions/IngestResponse"
//	'200':
//	  description: Document was already indexed
//	'400':
//	  description: Missing or unreadable file part
//	'415':
//	  description: Unsupported document type
//	'422':
//	  description: Extraction or chunking yielded nothing
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.WarnContext(ctx, "missing file part", "error", err)
		writeError(w, http.StatusBadRequest, "A \"file\" form part is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	extractor, err := extract.ForFile(header.Filename)
	if err != nil {
		logger.WarnContext(ctx, "unsupported document type", "file_name", header.Filename)
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}

	text, err := extractor.Extract(file, header.Size)
	if err != nil {
		logger.ErrorContext(ctx, "text extraction failed", "file_name", header.Filename, "error", err)
		writeError(w, http.StatusUnprocessableEntity, "Failed to extract text from document")
		return
	}

	if strings.TrimSpace(text) == "" {
		logger.WarnContext(ctx, "document has no extractable text", "file_name", header.Filename)
		writeError(w, http.StatusUnprocessableEntity, "Document contains no extractable text")
		return
	}

	result, err := h.pipeline.IngestDocument(ctx, header.Filename, text)
	if err != nil {
		switch {
		case errors.Is(err, indexer.ErrEmptyDocument), errors.Is(err, indexer.ErrNoChunks):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			logger.ErrorContext(ctx, "ingestion failed", "file_name", header.Filename, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to ingest document")
		}
		return
	}

	status := http.StatusCreated
	if result.Skipped {
		status = http.StatusOK
	}

	writeJSON(w, status, IngestResponse{
		DocumentID: result.DocumentID,
		FileName:   result.FileName,
		Chunks:     result.ChunkCount,
		Skipped:    result.Skipped,
	})
}
