package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks sectiondocs/internal/vectorstore VectorStore

import "context"

// Point represents a chunk vector with its payload.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// Payload keys written for every chunk point.
const (
	PayloadTenant      = "tenant"
	PayloadFileName    = "file_name"
	PayloadChunkIndex  = "chunk_index"
	PayloadHeader      = "header"
	PayloadContent     = "content"
	PayloadCreatedDate = "created_date"
)

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// DeleteByTenant removes every point whose tenant payload matches.
	DeleteByTenant(ctx context.Context, collection string, tenant string) error

	// CountByTenant returns the number of points stored for a tenant.
	CountByTenant(ctx context.Context, collection string, tenant string) (int, error)

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
