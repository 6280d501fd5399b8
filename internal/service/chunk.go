package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_service.go -package=mocks sectiondocs/internal/service ChunkService

import (
	"context"
	"strings"
	"unicode/utf8"

	"sectiondocs/internal/chunker"
	"sectiondocs/internal/contextutil"
)

const (
	// MaxPreviewBytes caps the markdown accepted by a chunk preview.
	MaxPreviewBytes = 1 << 20
	// MaxPreviewChars caps the budget a preview may ask for.
	MaxPreviewChars = 100_000
)

// ChunkRequest asks for a preview of how a document would be chunked.
// A zero MaxChars uses the configured budget.
type ChunkRequest struct {
	Markdown string
	MaxChars int
}

// ChunkPreview is one chunk of a preview.
type ChunkPreview struct {
	Index     int    `json:"index"`
	Header    string `json:"header"`
	Text      string `json:"text"`
	Length    int    `json:"length"`
	Oversized bool   `json:"oversized"`
}

// ChunkResponse is the result of a chunk preview.
type ChunkResponse struct {
	MaxChars       int            `json:"max_chars"`
	ChunkerVersion string         `json:"chunker_version"`
	Chunks         []ChunkPreview `json:"chunks"`
	Oversized      int            `json:"oversized"`
}

// ChunkService previews chunking without storing anything.
type ChunkService interface {
	Preview(ctx context.Context, req ChunkRequest) (ChunkResponse, error)
}

type chunkService struct {
	defaultMaxChars int
}

// NewChunkService creates a ChunkService that falls back to defaultMaxChars.
func NewChunkService(defaultMaxChars int) ChunkService {
	return &chunkService{defaultMaxChars: defaultMaxChars}
}

func (s *chunkService) Preview(ctx context.Context, req ChunkRequest) (ChunkResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	switch {
	case strings.TrimSpace(req.Markdown) == "":
		return ChunkResponse{}, &ValidationError{Field: "markdown", Message: "cannot be empty"}
	case len(req.Markdown) > MaxPreviewBytes:
		return ChunkResponse{}, &ValidationError{Field: "markdown", Message: "exceeds 1 MiB"}
	case !utf8.ValidString(req.Markdown):
		return ChunkResponse{}, &ValidationError{Field: "markdown", Message: "must be valid UTF-8"}
	case req.MaxChars < 0:
		return ChunkResponse{}, &ValidationError{Field: "max_chars", Message: "must not be negative"}
	case req.MaxChars > MaxPreviewChars:
		return ChunkResponse{}, &ValidationError{Field: "max_chars", Message: "is too large"}
	}

	maxChars := req.MaxChars
	if maxChars == 0 {
		maxChars = s.defaultMaxChars
	}

	chunks, err := chunker.ChunkDocument(req.Markdown, maxChars)
	if err != nil {
		return ChunkResponse{}, WrapError(err, "failed to chunk document")
	}

	resp := ChunkResponse{
		MaxChars:       maxChars,
		ChunkerVersion: chunker.Version,
		Chunks:         make([]ChunkPreview, len(chunks)),
	}
	for i, c := range chunks {
		resp.Chunks[i] = ChunkPreview{
			Index:     i,
			Header:    c.Header,
			Text:      c.Text,
			Length:    c.Length,
			Oversized: c.Oversized,
		}
		if c.Oversized {
			resp.Oversized++
		}
	}

	logger.DebugContext(ctx, "chunk preview", "max_chars", maxChars, "chunks", len(chunks), "oversized", resp.Oversized)
	return resp, nil
}
