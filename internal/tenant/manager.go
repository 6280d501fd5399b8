// Package tenant discovers tenant directories under the data dir and
// resolves document paths inside them.
package tenant

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sectiondocs/internal/contextutil"
	"sectiondocs/internal/storage"
)

// Manager caches the tenants found under the data dir.
// It is read-only after NewManager returns and safe for concurrent use.
type Manager struct {
	store   storage.TenantStore
	dataDir string
	byName  map[string]storage.TenantRecord
	byID    map[int]storage.TenantRecord
}

// NewManager registers every immediate sub-directory of dataDir as a tenant.
// Hidden directories are skipped.
func NewManager(ctx context.Context, store storage.TenantStore, dataDir string) (*Manager, error) {
	logger := contextutil.LoggerFromContext(ctx)

	absDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir %s: %w", dataDir, err)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data dir %s: %w", absDir, err)
	}

	m := &Manager{
		store:   store,
		dataDir: absDir,
		byName:  make(map[string]storage.TenantRecord),
		byID:    make(map[int]storage.TenantRecord),
	}

	for _, entry := range entries {
		if !entry.IsDir() || isHidden(entry.Name()) {
			continue
		}

		name := entry.Name()
		record, err := store.GetOrCreateByName(ctx, name, filepath.Join(absDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to register tenant %s: %w", name, err)
		}
		m.byName[name] = record
		m.byID[record.ID] = record
	}

	logger.InfoContext(ctx, "tenants discovered", "data_dir", absDir, "count", len(m.byName))
	return m, nil
}

// DataDir returns the absolute data directory.
func (m *Manager) DataDir() string {
	return m.dataDir
}

// ByName returns the tenant record for the given tenant name.
func (m *Manager) ByName(name string) (storage.TenantRecord, error) {
	record, ok := m.byName[name]
	if !ok {
		return storage.TenantRecord{}, fmt.Errorf("tenant %s: %w", name, storage.ErrNotFound)
	}
	return record, nil
}

// ByID returns the tenant record for the given tenant ID.
func (m *Manager) ByID(id int) (storage.TenantRecord, error) {
	record, ok := m.byID[id]
	if !ok {
		return storage.TenantRecord{}, fmt.Errorf("tenant %d: %w", id, storage.ErrNotFound)
	}
	return record, nil
}

// List returns all tenants sorted by name.
func (m *Manager) List() []storage.TenantRecord {
	records := make([]storage.TenantRecord, 0, len(m.byName))
	for _, record := range m.byName {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records
}

// AbsPath returns the absolute path of a document given its tenant ID and
// forward-slash relative path. Paths escaping the tenant root are rejected.
func (m *Manager) AbsPath(tenantID int, relPath string) (string, error) {
	record, err := m.ByID(tenantID)
	if err != nil {
		return "", err
	}

	clean := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes tenant %s", relPath, record.Name)
	}

	return filepath.Join(record.RootPath, clean), nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
