package handlers

import (
	"context"
	"net/http"

	"intelliclause/internal/contextutil"
	"intelliclause/internal/indexer"
)

// CoverageStatsProvider computes ingestion coverage statistics.
// *indexer.Pipeline satisfies this.
type CoverageStatsProvider interface {
	GetIngestionCoverageStats(ctx context.Context, embeddingModelName string) (*indexer.IngestionCoverageStats, error)
}

// StatsHandler reports ingestion coverage statistics for the running index.
type StatsHandler struct {
	stats          CoverageStatsProvider
	embeddingModel string
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats CoverageStatsProvider, embeddingModel string) *StatsHandler {
	return &StatsHandler{
		stats:          stats,
		embeddingModel: embeddingModel,
	}
}

// ServeHTTP handles HTTP requests for ingestion statistics.
//
// swagger:route GET /api/v1/stats getStats
//
// # Ingestion coverage statistics
//
// Reports document and chunk counts, chunk token statistics and the current
// index version.
//
// responses:
//
//	'200':
//	  description: Current ingestion coverage statistics
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	stats, err := h.stats.GetIngestionCoverageStats(ctx, h.embeddingModel)
	if err != nil {
		logger.ErrorContext(ctx, "failed to compute ingestion coverage stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute ingestion statistics")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
