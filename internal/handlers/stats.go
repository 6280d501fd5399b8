package handlers

import (
	"context"
	"net/http"

	"sectiondocs/internal/indexer"
)

// StatsReporter computes coverage statistics.
type StatsReporter interface {
	GetCoverageStats(ctx context.Context) (*indexer.CoverageStats, error)
}

// StatsHandler handles GET /api/stats.
type StatsHandler struct {
	reporter StatsReporter
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(reporter StatsReporter) *StatsHandler {
	return &StatsHandler{reporter: reporter}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.reporter.GetCoverageStats(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to compute stats")
		return
	}

	writeJSON(ctx, w, http.StatusOK, stats)
}
