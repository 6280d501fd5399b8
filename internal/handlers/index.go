package handlers

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_indexer.go -package=mocks sectiondocs/internal/handlers Indexer

import (
	"context"
	"errors"
	"net/http"

	"sectiondocs/internal/contextutil"
	"sectiondocs/internal/indexer"
)

// Indexer runs ingestion.
type Indexer interface {
	IndexAll(ctx context.Context) (indexer.RunResult, error)
	ClearAll(ctx context.Context) error
	Running() bool
}

// IndexHandler handles POST /api/index.
type IndexHandler struct {
	indexer Indexer
	done    func() // called when a background run ends; tests use it to wait
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(idx Indexer) *IndexHandler {
	return &IndexHandler{indexer: idx, done: func() {}}
}

// IndexResponse represents the response from the index endpoint.
type IndexResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP starts an ingestion run in the background and returns 202.
// With ?force=true the stored index is cleared first. A run already in
// progress yields 409.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if h.indexer.Running() {
		writeError(ctx, w, http.StatusConflict, "Indexing already running")
		return
	}

	force := r.URL.Query().Get("force") == "true"
	logger.InfoContext(ctx, "indexing triggered via API", "force", force)

	// The run outlives the request but keeps its logger.
	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer h.done()

		if force {
			if err := h.indexer.ClearAll(runCtx); err != nil {
				logger.ErrorContext(runCtx, "failed to clear index", "error", err)
				return
			}
		}

		result, err := h.indexer.IndexAll(runCtx)
		switch {
		case errors.Is(err, indexer.ErrIndexRunning):
			logger.WarnContext(runCtx, "indexing already running")
		case err != nil:
			logger.ErrorContext(runCtx, "indexing completed with errors", "error", err,
				"indexed", result.Indexed, "failed", result.Failed)
		default:
			logger.InfoContext(runCtx, "indexing completed", "indexed", result.Indexed, "skipped", result.Skipped)
		}
	}()

	message := "Indexing started. Check server logs for progress."
	if force {
		message = "Index cleared and re-indexing started. Check server logs for progress."
	}
	writeJSON(ctx, w, http.StatusAccepted, IndexResponse{Message: message, Status: "accepted"})
}
