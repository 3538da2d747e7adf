package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"intelliclause/internal/indexer"
	"intelliclause/internal/rag"
	storage_mocks "intelliclause/internal/storage/mocks"
	vectorstore_mocks "intelliclause/internal/vectorstore/mocks"
)

type stubChecker struct{ exists bool }

func (s *stubChecker) CollectionExists(_ context.Context, _ string) (bool, error) {
	return s.exists, nil
}

type stubEngine struct{}

func (stubEngine) Ask(_ context.Context, _ rag.AskRequest) (rag.AskResponse, error) {
	return rag.AskResponse{Answer: "ok", References: []rag.Reference{}}, nil
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}

func testDeps(ctrl *gomock.Controller) *Deps {
	docRepo := storage_mocks.NewMockDocumentStore(ctrl)
	docRepo.EXPECT().ListAll(gomock.Any()).Return(nil, nil).AnyTimes()

	pipeline := indexer.NewPipeline(
		docRepo,
		storage_mocks.NewMockChunkStore(ctrl),
		stubEmbedder{},
		vectorstore_mocks.NewMockVectorStore(ctrl),
		"policy_chunks",
		0,
	)

	return &Deps{
		RAGEngine:      stubEngine{},
		Pipeline:       pipeline,
		DocumentRepo:   docRepo,
		VectorStore:    &stubChecker{exists: true},
		Collection:     "policy_chunks",
		EmbeddingModel: "nomic-embed-text",
	}
}

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(testDeps(ctrl))

	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(testDeps(ctrl))

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{
			name:       "GET /api/health",
			method:     http.MethodGet,
			path:       "/api/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/v1/ask exists",
			method:     http.MethodPost,
			path:       "/api/v1/ask",
			wantStatus: http.StatusBadRequest, // invalid body, but route exists
		},
		{
			name:       "GET /api/v1/documents",
			method:     http.MethodGet,
			path:       "/api/v1/documents",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/v1/documents exists",
			method:     http.MethodPost,
			path:       "/api/v1/documents",
			wantStatus: http.StatusBadRequest, // not a multipart form, but route exists
		},
		{
			name:       "GET /api/v1/stats exists",
			method:     http.MethodGet,
			path:       "/api/v1/stats",
			wantStatus: http.StatusInternalServerError, // mock repos cannot serve stats, but route exists
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/v1/unknown",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(testDeps(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}
}
