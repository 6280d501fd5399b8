package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_tenant_store.go -package=mocks sectiondocs/internal/storage TenantStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// TenantStore defines the interface for tenant storage operations.
type TenantStore interface {
	// GetOrCreateByName gets an existing tenant by name, or creates it if it doesn't exist.
	GetOrCreateByName(ctx context.Context, name, rootPath string) (TenantRecord, error)
	// ListAll returns all tenants ordered by name.
	ListAll(ctx context.Context) ([]TenantRecord, error)
	// CountDocuments returns the number of documents ingested for a tenant.
	CountDocuments(ctx context.Context, tenantID int) (int, error)
}

// TenantRepo provides methods for tenant operations.
// It implements the TenantStore interface.
type TenantRepo struct {
	db *sql.DB
}

// NewTenantRepo creates a new TenantRepo.
func NewTenantRepo(db *sql.DB) *TenantRepo {
	return &TenantRepo{db: db}
}

// GetOrCreateByName gets an existing tenant by name, or creates it if it doesn't exist.
func (r *TenantRepo) GetOrCreateByName(ctx context.Context, name, rootPath string) (TenantRecord, error) {
	tenant, err := r.getByName(ctx, name)
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return TenantRecord{}, err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO tenants (name, root_path) VALUES (?, ?) ON CONFLICT (name) DO NOTHING",
		name, rootPath,
	)
	if err != nil {
		return TenantRecord{}, fmt.Errorf("failed to insert tenant: %w", err)
	}

	return r.getByName(ctx, name)
}

func (r *TenantRepo) getByName(ctx context.Context, name string) (TenantRecord, error) {
	var tenant TenantRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, root_path, created_at FROM tenants WHERE name = ?",
		name,
	).Scan(&tenant.ID, &tenant.Name, &tenant.RootPath, &tenant.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return TenantRecord{}, ErrNotFound
	}
	if err != nil {
		return TenantRecord{}, fmt.Errorf("failed to query tenant: %w", err)
	}
	return tenant, nil
}

// ListAll returns all tenants ordered by name.
func (r *TenantRepo) ListAll(ctx context.Context) ([]TenantRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, root_path, created_at FROM tenants ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tenants []TenantRecord
	for rows.Next() {
		var tenant TenantRecord
		if err := rows.Scan(&tenant.ID, &tenant.Name, &tenant.RootPath, &tenant.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tenants, nil
}

// CountDocuments returns the number of documents ingested for a tenant.
func (r *TenantRepo) CountDocuments(ctx context.Context, tenantID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE tenant_id = ?",
		tenantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}
