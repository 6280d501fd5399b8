package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_catalog_service.go -package=mocks sectiondocs/internal/service CatalogService

import (
	"context"
	"errors"
	"time"

	"sectiondocs/internal/contextutil"
	"sectiondocs/internal/storage"
	"sectiondocs/internal/tenant"
	"sectiondocs/internal/vectorstore"
)

const (
	// DefaultDocumentLimit is used when a listing does not ask for a limit.
	DefaultDocumentLimit = 50
	// MaxDocumentLimit caps a single listing.
	MaxDocumentLimit = 1000
)

// TenantSummary describes one tenant.
// VectorPoints is nil when the vector stage is disabled or unreachable.
type TenantSummary struct {
	Name         string `json:"name"`
	Documents    int    `json:"documents"`
	VectorPoints *int   `json:"vector_points,omitempty"`
}

// DocumentSummary describes one ingested document.
type DocumentSummary struct {
	RelPath   string    `json:"rel_path"`
	FileName  string    `json:"file_name"`
	Title     string    `json:"title"`
	Chunks    int       `json:"chunks"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CatalogService lists tenants and their documents.
type CatalogService interface {
	ListTenants(ctx context.Context) ([]TenantSummary, error)
	ListDocuments(ctx context.Context, tenantName string, limit int) ([]DocumentSummary, error)
}

type catalogService struct {
	tenants     *tenant.Manager
	tenantRepo  storage.TenantStore
	docRepo     storage.DocumentStore
	vectorStore vectorstore.VectorStore
	collection  string
}

// NewCatalogService creates a CatalogService. vectorStore may be nil.
func NewCatalogService(
	tenants *tenant.Manager,
	tenantRepo storage.TenantStore,
	docRepo storage.DocumentStore,
	vectorStore vectorstore.VectorStore,
	collection string,
) CatalogService {
	return &catalogService{
		tenants:     tenants,
		tenantRepo:  tenantRepo,
		docRepo:     docRepo,
		vectorStore: vectorStore,
		collection:  collection,
	}
}

func (s *catalogService) ListTenants(ctx context.Context) ([]TenantSummary, error) {
	logger := contextutil.LoggerFromContext(ctx)

	records := s.tenants.List()
	summaries := make([]TenantSummary, 0, len(records))
	for _, record := range records {
		count, err := s.tenantRepo.CountDocuments(ctx, record.ID)
		if err != nil {
			return nil, WrapError(err, "failed to count documents")
		}

		summary := TenantSummary{Name: record.Name, Documents: count}
		if s.vectorStore != nil {
			points, err := s.vectorStore.CountByTenant(ctx, s.collection, record.Name)
			if err != nil {
				logger.WarnContext(ctx, "failed to count tenant vectors", "tenant", record.Name, "error", err)
			} else {
				summary.VectorPoints = &points
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *catalogService) ListDocuments(ctx context.Context, tenantName string, limit int) ([]DocumentSummary, error) {
	switch {
	case limit < 0:
		return nil, &ValidationError{Field: "limit", Message: "must not be negative"}
	case limit == 0:
		limit = DefaultDocumentLimit
	case limit > MaxDocumentLimit:
		limit = MaxDocumentLimit
	}

	record, err := s.tenants.ByName(tenantName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, WrapError(ErrNotFound, "tenant "+tenantName)
	}
	if err != nil {
		return nil, err
	}

	docs, err := s.docRepo.ListByTenant(ctx, record.ID, limit)
	if err != nil {
		return nil, WrapError(err, "failed to list documents")
	}

	summaries := make([]DocumentSummary, len(docs))
	for i, doc := range docs {
		summaries[i] = DocumentSummary{
			RelPath:   doc.RelPath,
			FileName:  doc.FileName,
			Title:     doc.Title,
			Chunks:    doc.ChunkCount,
			UpdatedAt: doc.UpdatedAt,
		}
	}
	return summaries, nil
}
