package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks sectiondocs/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// GetByTenantAndPath gets a document by tenant ID and relative path.
	// Returns nil and ErrNotFound if not found.
	GetByTenantAndPath(ctx context.Context, tenantID int, relPath string) (*DocumentRecord, error)
	// Upsert inserts a new document or updates an existing one.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// ListByTenant returns up to limit documents of a tenant ordered by path.
	ListByTenant(ctx context.Context, tenantID int, limit int) ([]DocumentRecord, error)
	// DeleteAll removes every document and, through the cascade, every chunk.
	DeleteAll(ctx context.Context) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = "id, tenant_id, rel_path, file_name, title, hash, chunk_count, updated_at"

func scanDocument(row interface{ Scan(...any) error }, doc *DocumentRecord) error {
	var title sql.NullString
	if err := row.Scan(&doc.ID, &doc.TenantID, &doc.RelPath, &doc.FileName, &title, &doc.Hash, &doc.ChunkCount, &doc.UpdatedAt); err != nil {
		return err
	}
	doc.Title = title.String
	return nil
}

// GetByTenantAndPath gets a document by tenant ID and relative path.
// Returns nil and ErrNotFound if not found.
func (r *DocumentRepo) GetByTenantAndPath(ctx context.Context, tenantID int, relPath string) (*DocumentRecord, error) {
	var doc DocumentRecord
	row := r.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE tenant_id = ? AND rel_path = ?",
		tenantID, relPath,
	)
	err := scanDocument(row, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return &doc, nil
}

// Upsert inserts a new document or updates an existing one.
// If the document doesn't exist (by tenant_id and rel_path), generates a new UUID.
// If it exists, updates title, hash and chunk_count while preserving the ID.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	existing, err := r.GetByTenantAndPath(ctx, doc.TenantID, doc.RelPath)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil {
		doc.ID = existing.ID
	} else if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (id, tenant_id, rel_path, file_name, title, hash, chunk_count, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (tenant_id, rel_path) DO UPDATE SET
		 title = excluded.title, hash = excluded.hash, chunk_count = excluded.chunk_count,
		 updated_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.TenantID, doc.RelPath, doc.FileName, doc.Title, doc.Hash, doc.ChunkCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// ListByTenant returns up to limit documents of a tenant ordered by path.
// A limit of 0 or less returns every document.
func (r *DocumentRepo) ListByTenant(ctx context.Context, tenantID int, limit int) ([]DocumentRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE tenant_id = ? ORDER BY rel_path LIMIT ?",
		tenantID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		if err := scanDocument(rows, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// DeleteAll removes every document and, through the cascade, every chunk.
func (r *DocumentRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}
