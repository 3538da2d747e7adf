// Package rag answers questions about ingested policy documents by
// retrieving relevant chunks and synthesizing an answer with an LLM.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"intelliclause/internal/contextutil"
	"intelliclause/internal/llm"
	"intelliclause/internal/parser"
	"intelliclause/internal/storage"
	"intelliclause/internal/vectorstore"
)

const (
	defaultK = 5
	maxK     = 20

	noContextAnswer = "I couldn't find any relevant information in the ingested documents to answer this question."
)

// Embedder generates embedding vectors for a batch of texts.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Chatter generates a chat completion for a message sequence.
type Chatter interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Engine provides RAG (Retrieval-Augmented Generation) functionality.
type Engine interface {
	// Ask answers a question by retrieving relevant chunks and generating an answer.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	chunkRepo   storage.ChunkStore
	llmClient   Chatter
	logger      *slog.Logger
}

// NewEngine creates a new RAG engine.
func NewEngine(
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	chunkRepo storage.ChunkStore,
	llmClient Chatter,
) Engine {
	return &ragEngine{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		chunkRepo:   chunkRepo,
		llmClient:   llmClient,
		logger:      slog.Default(),
	}
}

func (e *ragEngine) getLogger(ctx context.Context) *slog.Logger {
	if logger := contextutil.LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return e.logger
}

// Ask answers a question using RAG.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := e.getLogger(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AskResponse{}, fmt.Errorf("question must not be empty")
	}

	intent := parser.ParseIntent(question)
	retrievalQuery := enrichQuery(question, intent)

	logger.InfoContext(ctx, "RAG query started",
		"question", question,
		"document_id", req.DocumentID,
		"main_topic", intent.MainTopic,
		"question_type", intent.QuestionType,
	)

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{retrievalQuery})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed question", "error", err)
		return AskResponse{}, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(embeddings) == 0 {
		return AskResponse{}, fmt.Errorf("no embedding returned for question")
	}
	queryVector := embeddings[0]

	k := req.K
	if k == 0 {
		k = defaultK
	}
	if k > maxK {
		k = maxK
	}

	filters := make(map[string]any)
	if req.DocumentID != "" {
		filters["document_id"] = req.DocumentID
	}

	searchResults, err := e.vectorStore.Search(ctx, e.collection, queryVector, k, filters)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search vector store", "error", err)
		return AskResponse{}, fmt.Errorf("failed to search vector store: %w", err)
	}

	logger.InfoContext(ctx, "vector search completed", "results_count", len(searchResults), "k_requested", k)

	if len(searchResults) == 0 {
		logger.InfoContext(ctx, "no search results found")
		return AskResponse{
			Answer:     noContextAnswer,
			References: []Reference{},
		}, nil
	}

	type scoredChunk struct {
		text         string
		documentID   string
		fileName     string
		sectionTitle string
		chunkIndex   int
		finalScore   float32
	}

	chunks := make([]scoredChunk, 0, len(searchResults))
	for _, result := range searchResults {
		documentID, _ := result.Meta["document_id"].(string)
		fileName, _ := result.Meta["file_name"].(string)
		sectionTitle, _ := result.Meta["section_title"].(string)

		chunk, err := e.chunkRepo.GetByID(ctx, result.PointID)
		if err != nil {
			logger.WarnContext(ctx, "failed to fetch chunk text", "chunk_id", result.PointID, "error", err)
			continue
		}

		chunks = append(chunks, scoredChunk{
			text:         chunk.Text,
			documentID:   documentID,
			fileName:     fileName,
			sectionTitle: sectionTitle,
			chunkIndex:   chunk.ChunkIndex,
			finalScore:   result.Score + lexicalScore(question, chunk.Text, sectionTitle),
		})
	}

	if len(chunks) == 0 {
		logger.WarnContext(ctx, "all search results missing from database")
		return AskResponse{
			Answer:     noContextAnswer,
			References: []Reference{},
		}, nil
	}

	// Blend of vector and lexical score decides the final ordering.
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].finalScore > chunks[j].finalScore
	})

	var contextBuilder strings.Builder
	contextBuilder.WriteString("--- Context from policy documents ---\n\n")
	for _, chunk := range chunks {
		contextBuilder.WriteString(fmt.Sprintf("File: %s\n", chunk.fileName))
		contextBuilder.WriteString(fmt.Sprintf("Section: %s\n", chunk.sectionTitle))
		contextBuilder.WriteString(fmt.Sprintf("Content: %s\n\n", chunk.text))
	}
	contextBuilder.WriteString("--- End Context ---")
	contextString := contextBuilder.String()

	logger.DebugContext(ctx, "context formatted for LLM",
		"context_length", len(contextString),
		"chunks_included", len(chunks),
	)

	systemPrompt := "You are an assistant that answers questions about insurance policy documents " +
		"using only the provided context. Quote the relevant clause or section when possible. " +
		"If the context does not contain enough information to answer the question, say so plainly."

	userMessage := fmt.Sprintf("%s\n\n%s", question, contextString)

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userMessage},
	}

	answer, err := e.llmClient.ChatWithMessages(ctx, messages, llm.ChatParams{
		Temperature: 0.2,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return AskResponse{}, fmt.Errorf("failed to get LLM response: %w", err)
	}

	references := make([]Reference, 0, len(chunks))
	for _, chunk := range chunks {
		references = append(references, Reference{
			DocumentID:   chunk.documentID,
			FileName:     chunk.fileName,
			SectionTitle: chunk.sectionTitle,
			ChunkIndex:   chunk.chunkIndex,
		})
	}

	logger.InfoContext(ctx, "RAG query completed", "chunks_used", len(chunks), "answer_length", len(answer))

	return AskResponse{
		Answer:     answer,
		References: references,
	}, nil
}

// enrichQuery appends the parsed topic and key entities to the question so the
// embedding leans toward the policy vocabulary the question is really about.
func enrichQuery(question string, intent parser.Intent) string {
	var extras []string
	if intent.MainTopic != "" {
		extras = append(extras, intent.MainTopic)
	}
	for _, entity := range intent.KeyEntities {
		if !strings.Contains(strings.ToLower(question), entity) {
			extras = append(extras, entity)
		}
	}
	if len(extras) == 0 {
		return question
	}
	return question + "\n" + strings.Join(extras, ", ")
}
