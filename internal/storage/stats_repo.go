package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Counts summarises what is currently stored.
type Counts struct {
	Documents       int
	DocumentsNoData int // documents that produced zero chunks
	Chunks          int
	Oversized       int
}

// StatsRepo runs aggregate queries for coverage statistics.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo creates a new StatsRepo.
func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// Counts returns document and chunk totals.
func (r *StatsRepo) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := r.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM documents),
		(SELECT COUNT(*) FROM documents WHERE chunk_count = 0),
		(SELECT COUNT(*) FROM chunks),
		(SELECT COUNT(*) FROM chunks WHERE oversized = 1)`,
	).Scan(&c.Documents, &c.DocumentsNoData, &c.Chunks, &c.Oversized)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to query counts: %w", err)
	}
	return c, nil
}

// ChunkLengths returns the character length of every stored chunk.
func (r *StatsRepo) ChunkLengths(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT char_length FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk lengths: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var lengths []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan chunk length: %w", err)
		}
		lengths = append(lengths, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lengths, nil
}

// Ping checks the database connection.
func (r *StatsRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
