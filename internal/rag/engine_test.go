package rag

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"intelliclause/internal/llm"
	"intelliclause/internal/storage"
	storage_mocks "intelliclause/internal/storage/mocks"
	"intelliclause/internal/vectorstore"
	vectorstore_mocks "intelliclause/internal/vectorstore/mocks"
)

type stubEmbedder struct {
	queries []string
	err     error
}

func (s *stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	s.queries = append(s.queries, texts...)
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type stubChatter struct {
	answer   string
	err      error
	messages []llm.Message
}

func (s *stubChatter) ChatWithMessages(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
	s.messages = messages
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func searchResult(pointID, docID, fileName, sectionTitle string, score float32) vectorstore.SearchResult {
	return vectorstore.SearchResult{
		PointID: pointID,
		Score:   score,
		Meta: map[string]any{
			"document_id":   docID,
			"file_name":     fileName,
			"chunk_id":      pointID,
			"page_number":   int64(0),
			"section_title": sectionTitle,
		},
	}
}

func TestEngine_Ask(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := &stubEmbedder{}
	chatter := &stubChatter{answer: "The waiting period for maternity coverage is 24 months."}
	vecStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	chunkRepo := storage_mocks.NewMockChunkStore(ctrl)

	vecStore.EXPECT().
		Search(gomock.Any(), "policies", gomock.Any(), 5, gomock.Any()).
		Return([]vectorstore.SearchResult{
			searchResult("c1", "doc-1", "policy.pdf", "Article 2 > 2.1", 0.9),
			searchResult("c2", "doc-1", "policy.pdf", "3. Exclusions", 0.7),
		}, nil)

	chunkRepo.EXPECT().GetByID(gomock.Any(), "c1").Return(&storage.ChunkRecord{
		ID: "c1", DocumentID: "doc-1", ChunkIndex: 1,
		SectionTitle: "Article 2 > 2.1",
		Text:         "Maternity coverage begins after a waiting period of 24 months.",
	}, nil)
	chunkRepo.EXPECT().GetByID(gomock.Any(), "c2").Return(&storage.ChunkRecord{
		ID: "c2", DocumentID: "doc-1", ChunkIndex: 4,
		SectionTitle: "3. Exclusions",
		Text:         "We shall not be liable for claims arising from self-inflicted injury.",
	}, nil)

	engine := NewEngine(embedder, vecStore, "policies", chunkRepo, chatter)

	resp, err := engine.Ask(context.Background(), AskRequest{
		Question: "How long is the waiting period for maternity coverage?",
	})
	if err != nil {
		t.Fatalf("Ask() error: %v", err)
	}

	if resp.Answer != chatter.answer {
		t.Errorf("Answer = %q, want %q", resp.Answer, chatter.answer)
	}
	if len(resp.References) != 2 {
		t.Fatalf("References count = %d, want 2", len(resp.References))
	}

	// The maternity chunk has more lexical overlap with the question, so the
	// rerank must place it first.
	if resp.References[0].SectionTitle != "Article 2 > 2.1" {
		t.Errorf("first reference section = %q, want %q", resp.References[0].SectionTitle, "Article 2 > 2.1")
	}
	if resp.References[0].DocumentID != "doc-1" {
		t.Errorf("first reference document = %q, want doc-1", resp.References[0].DocumentID)
	}
	if resp.References[0].ChunkIndex != 1 {
		t.Errorf("first reference chunk index = %d, want 1", resp.References[0].ChunkIndex)
	}

	// The LLM prompt carries the context with file and section labels.
	if len(chatter.messages) != 2 {
		t.Fatalf("LLM messages count = %d, want 2", len(chatter.messages))
	}
	if chatter.messages[0].Role != "system" {
		t.Errorf("first message role = %q, want system", chatter.messages[0].Role)
	}
	userMsg := chatter.messages[1].Content
	for _, want := range []string{"File: policy.pdf", "Section: Article 2 > 2.1", "waiting period"} {
		if !strings.Contains(userMsg, want) {
			t.Errorf("user message missing %q", want)
		}
	}
}

func TestEngine_Ask_EnrichesRetrievalQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := &stubEmbedder{}
	vecStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	vecStore.EXPECT().
		Search(gomock.Any(), "policies", gomock.Any(), 5, gomock.Any()).
		Return(nil, nil)

	engine := NewEngine(embedder, vecStore, "policies",
		storage_mocks.NewMockChunkStore(ctrl), &stubChatter{})

	_, err := engine.Ask(context.Background(), AskRequest{
		Question: "How long is the waiting period for maternity coverage?",
	})
	if err != nil {
		t.Fatalf("Ask() error: %v", err)
	}

	if len(embedder.queries) != 1 {
		t.Fatalf("embedder saw %d queries, want 1", len(embedder.queries))
	}
	// The embedded query keeps the question and adds the parsed topic.
	if !strings.Contains(embedder.queries[0], "How long is the waiting period") {
		t.Errorf("retrieval query lost the question: %q", embedder.queries[0])
	}
	if !strings.Contains(embedder.queries[0], "maternity") {
		t.Errorf("retrieval query missing parsed topic: %q", embedder.queries[0])
	}
}

func TestEngine_Ask_DocumentFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	vecStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	vecStore.EXPECT().
		Search(gomock.Any(), "policies", gomock.Any(), 5, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ []float32, _ int, filters map[string]any) ([]vectorstore.SearchResult, error) {
			if filters["document_id"] != "doc-42" {
				t.Errorf("filters document_id = %v, want doc-42", filters["document_id"])
			}
			return nil, nil
		})

	engine := NewEngine(&stubEmbedder{}, vecStore, "policies",
		storage_mocks.NewMockChunkStore(ctrl), &stubChatter{})

	_, err := engine.Ask(context.Background(), AskRequest{
		Question:   "What is covered?",
		DocumentID: "doc-42",
	})
	if err != nil {
		t.Fatalf("Ask() error: %v", err)
	}
}

func TestEngine_Ask_KBounds(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{name: "default", requested: 0, want: 5},
		{name: "explicit", requested: 10, want: 10},
		{name: "capped", requested: 100, want: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			vecStore := vectorstore_mocks.NewMockVectorStore(ctrl)
			vecStore.EXPECT().
				Search(gomock.Any(), "policies", gomock.Any(), tt.want, gomock.Any()).
				Return(nil, nil)

			engine := NewEngine(&stubEmbedder{}, vecStore, "policies",
				storage_mocks.NewMockChunkStore(ctrl), &stubChatter{})

			_, err := engine.Ask(context.Background(), AskRequest{
				Question: "What is covered?",
				K:        tt.requested,
			})
			if err != nil {
				t.Fatalf("Ask() error: %v", err)
			}
		})
	}
}

func TestEngine_Ask_NoResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chatter := &stubChatter{answer: "should not be called"}
	vecStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	vecStore.EXPECT().
		Search(gomock.Any(), "policies", gomock.Any(), 5, gomock.Any()).
		Return(nil, nil)

	engine := NewEngine(&stubEmbedder{}, vecStore, "policies",
		storage_mocks.NewMockChunkStore(ctrl), chatter)

	resp, err := engine.Ask(context.Background(), AskRequest{Question: "What is covered?"})
	if err != nil {
		t.Fatalf("Ask() error: %v", err)
	}

	if resp.Answer != noContextAnswer {
		t.Errorf("Answer = %q, want the no-context answer", resp.Answer)
	}
	if len(resp.References) != 0 {
		t.Errorf("References = %v, want empty", resp.References)
	}
	if len(chatter.messages) != 0 {
		t.Error("LLM was called despite empty search results")
	}
}

func TestEngine_Ask_EmptyQuestion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine := NewEngine(&stubEmbedder{}, vectorstore_mocks.NewMockVectorStore(ctrl),
		"policies", storage_mocks.NewMockChunkStore(ctrl), &stubChatter{})

	for _, question := range []string{"", "   "} {
		_, err := engine.Ask(context.Background(), AskRequest{Question: question})
		if err == nil {
			t.Errorf("Ask(%q) expected error, got nil", question)
		}
	}
}

func TestEngine_Ask_EmbedderError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	engine := NewEngine(
		&stubEmbedder{err: fmt.Errorf("embedding service down")},
		vectorstore_mocks.NewMockVectorStore(ctrl),
		"policies",
		storage_mocks.NewMockChunkStore(ctrl),
		&stubChatter{},
	)

	_, err := engine.Ask(context.Background(), AskRequest{Question: "What is covered?"})
	if err == nil {
		t.Fatal("Ask() expected error from embedder, got nil")
	}
}

func TestEngine_Ask_MissingChunksFallBackGracefully(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	vecStore := vectorstore_mocks.NewMockVectorStore(ctrl)
	chunkRepo := storage_mocks.NewMockChunkStore(ctrl)

	vecStore.EXPECT().
		Search(gomock.Any(), "policies", gomock.Any(), 5, gomock.Any()).
		Return([]vectorstore.SearchResult{
			searchResult("c1", "doc-1", "policy.pdf", "Article 1", 0.9),
		}, nil)
	chunkRepo.EXPECT().GetByID(gomock.Any(), "c1").Return(nil, storage.ErrNotFound)

	engine := NewEngine(&stubEmbedder{}, vecStore, "policies", chunkRepo, &stubChatter{})

	resp, err := engine.Ask(context.Background(), AskRequest{Question: "What is covered?"})
	if err != nil {
		t.Fatalf("Ask() error: %v", err)
	}
	if resp.Answer != noContextAnswer {
		t.Errorf("Answer = %q, want the no-context answer", resp.Answer)
	}
}
