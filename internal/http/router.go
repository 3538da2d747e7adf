// Package http wires the API routes and middleware.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"intelliclause/internal/handlers"
	"intelliclause/internal/indexer"
	"intelliclause/internal/rag"
	"intelliclause/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	RAGEngine      rag.Engine
	Pipeline       *indexer.Pipeline
	DocumentRepo   storage.DocumentStore
	VectorStore    handlers.CollectionChecker
	Collection     string
	EmbeddingModel string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.RAGEngine)
	ingestHandler := handlers.NewIngestHandler(deps.Pipeline)
	documentsHandler := handlers.NewDocumentsHandler(deps.DocumentRepo, deps.Pipeline)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection)
	statsHandler := handlers.NewStatsHandler(deps.Pipeline, deps.EmbeddingModel)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/v1", func(r chi.Router) {
			r.Method(http.MethodPost, "/ask", askHandler)
			r.Method(http.MethodPost, "/documents", ingestHandler)
			r.Get("/documents", documentsHandler.List)
			r.Delete("/documents/{id}", documentsHandler.Delete)
			r.Method(http.MethodGet, "/stats", statsHandler)
		})
	})

	return r
}
