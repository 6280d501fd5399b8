package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"slices"

	"sectiondocs/internal/chunker"
)

// CoverageStats describes what the current index holds.
type CoverageStats struct {
	// DocsProcessed is the number of documents recorded in the index.
	DocsProcessed int `json:"docs_processed"`
	// DocsWith0Chunks is the number of documents that produced no chunks.
	DocsWith0Chunks int `json:"docs_with_0_chunks"`
	// Chunks is the number of stored chunks.
	Chunks int `json:"chunks"`
	// OversizedChunks counts chunks longer than the character budget.
	OversizedChunks int `json:"oversized_chunks"`
	// ChunkLength summarises chunk lengths in characters.
	ChunkLength LengthStats `json:"chunk_length"`
	// ChunkerVersion identifies the chunking rules.
	ChunkerVersion string `json:"chunker_version"`
	// IndexVersion is a hash of the chunker version, embedding model and budget.
	IndexVersion string `json:"index_version"`
}

// LengthStats holds min, max, mean and 95th percentile of chunk lengths.
type LengthStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// CoverageReporter computes coverage statistics from the stored index.
type CoverageReporter struct {
	source         StatsSource
	maxChars       int
	embeddingModel string
}

// NewCoverageReporter creates a reporter for an index built with the given
// budget and embedding model.
func NewCoverageReporter(source StatsSource, maxChars int, embeddingModel string) *CoverageReporter {
	return &CoverageReporter{
		source:         source,
		maxChars:       maxChars,
		embeddingModel: embeddingModel,
	}
}

// GetCoverageStats queries the store and returns current coverage statistics.
func (r *CoverageReporter) GetCoverageStats(ctx context.Context) (*CoverageStats, error) {
	counts, err := r.source.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count index contents: %w", err)
	}

	lengths, err := r.source.ChunkLengths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunk lengths: %w", err)
	}

	return &CoverageStats{
		DocsProcessed:   counts.Documents,
		DocsWith0Chunks: counts.DocumentsNoData,
		Chunks:          counts.Chunks,
		OversizedChunks: counts.Oversized,
		ChunkLength:     computeLengthStats(lengths),
		ChunkerVersion:  chunker.Version,
		IndexVersion:    IndexVersion(r.embeddingModel, r.maxChars),
	}, nil
}

// IndexVersion returns a short hash identifying an index build.
// It changes whenever the chunker rules, embedding model or budget change.
func IndexVersion(embeddingModel string, maxChars int) string {
	input := fmt.Sprintf("%s|%s|maxChars=%d", chunker.Version, embeddingModel, maxChars)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:16]
}

// computeLengthStats uses the nearest-rank method for the percentile.
func computeLengthStats(lengths []int) LengthStats {
	if len(lengths) == 0 {
		return LengthStats{}
	}

	sorted := slices.Clone(lengths)
	slices.Sort(sorted)

	sum := 0
	for _, n := range sorted {
		sum += n
	}
	mean := float64(sum) / float64(len(sorted))

	rank := int(math.Ceil(0.95*float64(len(sorted)))) - 1
	rank = max(0, min(rank, len(sorted)-1))

	return LengthStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[rank],
	}
}
