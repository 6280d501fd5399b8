package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks sectiondocs/internal/indexer Embedder

import (
	"context"

	"sectiondocs/internal/storage"
)

// Embedder turns chunk texts into vectors, one per text in input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// StatsSource provides the aggregates behind coverage statistics.
type StatsSource interface {
	Counts(ctx context.Context) (storage.Counts, error)
	ChunkLengths(ctx context.Context) ([]int, error)
}

// Options configures a Pipeline.
type Options struct {
	MaxChars       int    // chunk budget in characters
	Workers        int    // documents ingested concurrently
	BatchSize      int    // texts per embeddings request
	Collection     string // vector store collection
	EmbeddingModel string // recorded in the index version
}

// RunResult summarises an IndexAll run.
type RunResult struct {
	Files   int `json:"files"`
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
