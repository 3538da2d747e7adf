package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"intelliclause/internal/contextutil"
	"intelliclause/internal/rag"
)

// AskHandler handles HTTP requests for RAG queries.
type AskHandler struct {
	ragEngine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(ragEngine rag.Engine) *AskHandler {
	return &AskHandler{
		ragEngine: ragEngine,
	}
}

// AskRequest represents the HTTP request payload for RAG queries.
// This mirrors the rag.AskRequest but is defined here for HTTP layer separation.
//
// swagger:model AskRequest
type AskRequest struct {
	Question   string `json:"question"`
	DocumentID string `json:"document_id,omitempty"`
	K          int    `json:"k,omitempty"`
}

// AskResponse represents the HTTP response payload for RAG queries.
//
// swagger:model AskResponse
type AskResponse struct {
	// The generated answer
	Answer string `json:"answer"`

	// List of references to source chunks used in the answer
	References []ReferenceResponse `json:"references"`
}

// ReferenceResponse represents a reference in the HTTP response.
//
// swagger:model ReferenceResponse
type ReferenceResponse struct {
	// Document the chunk belongs to
	DocumentID string `json:"document_id"`

	// Original file name of the document
	FileName string `json:"file_name"`

	// Structural address of the chunk (e.g., "Article 2 > 2.1 > B")
	SectionTitle string `json:"section_title"`

	// Index of the chunk within the document
	ChunkIndex int `json:"chunk_index"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for RAG queries.
//
// swagger:route POST /api/v1/ask askQuestion
//
// # Ask a question about ingested policy documents
//
// Retrieves relevant chunks, optionally filtered to a single document, and
// generates an answer with source references.
//
// responses:
//
//	'200':
//	  description: Answer with references
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Bad request (missing question)
//	'502':
//	  description: External service error (LLM or embedding service unavailable)
//	'503':
//	  description: Vector store unavailable
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	if req.K < 0 {
		req.K = 0
	}

	ragResp, err := h.ragEngine.Ask(ctx, rag.AskRequest{
		Question:   req.Question,
		DocumentID: req.DocumentID,
		K:          req.K,
	})
	if err != nil {
		h.handleRAGError(w, ctx, err, "Failed to process RAG query")
		return
	}

	references := make([]ReferenceResponse, len(ragResp.References))
	for i, ref := range ragResp.References {
		references[i] = ReferenceResponse{
			DocumentID:   ref.DocumentID,
			FileName:     ref.FileName,
			SectionTitle: ref.SectionTitle,
			ChunkIndex:   ref.ChunkIndex,
		}
	}

	writeJSON(w, http.StatusOK, AskResponse{
		Answer:     ragResp.Answer,
		References: references,
	})
}

// handleRAGError maps RAG engine errors to appropriate HTTP status codes.
func (h *AskHandler) handleRAGError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "RAG engine error", "error", err)

	errMsg := strings.ToLower(err.Error())

	// Vector store errors -> 503
	if strings.Contains(errMsg, "vector store") ||
		strings.Contains(errMsg, "qdrant") ||
		strings.Contains(errMsg, "failed to search") {
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
		return
	}

	// LLM/embedding errors -> 502
	if strings.Contains(errMsg, "embed") ||
		strings.Contains(errMsg, "llm") {
		writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	if strings.Contains(errMsg, "question must not be empty") {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	writeError(w, http.StatusInternalServerError, defaultMsg)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}
