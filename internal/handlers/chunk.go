package handlers

import (
	"encoding/json"
	"net/http"

	"sectiondocs/internal/service"
)

// ChunkHandler handles POST /api/chunk, a preview of how markdown is chunked.
type ChunkHandler struct {
	chunks service.ChunkService
}

// NewChunkHandler creates a new ChunkHandler.
func NewChunkHandler(chunks service.ChunkService) *ChunkHandler {
	return &ChunkHandler{chunks: chunks}
}

// ChunkRequest is the JSON body of a chunk preview.
type ChunkRequest struct {
	Markdown string `json:"markdown"`
	MaxChars int    `json:"max_chars,omitempty"`
}

func (h *ChunkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxPreviewBytes+4096)

	var req ChunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.chunks.Preview(ctx, service.ChunkRequest{
		Markdown: req.Markdown,
		MaxChars: req.MaxChars,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to chunk document")
		return
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}
