package tenant

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ScannedFile represents a markdown document found during a scan.
type ScannedFile struct {
	TenantID   int    // Tenant ID from database
	TenantName string // Tenant directory name
	RelPath    string // Relative path from tenant root, e.g. "policies/leave.md"
	AbsPath    string // Absolute file path
}

// FileName returns the base name of the document.
func (f ScannedFile) FileName() string {
	return path.Base(f.RelPath)
}

// ScanAll walks every tenant root and returns its markdown documents,
// ordered by tenant name then relative path. Hidden directories and files
// are skipped.
func (m *Manager) ScanAll(ctx context.Context) ([]ScannedFile, error) {
	var files []ScannedFile

	for _, record := range m.List() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		tenantFiles, err := scanTenant(record.ID, record.Name, record.RootPath)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant %s: %w", record.Name, err)
		}
		files = append(files, tenantFiles...)
	}

	return files, nil
}

func scanTenant(tenantID int, name, root string) ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", p, err)
		}

		if d.IsDir() {
			if p != root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if isHidden(d.Name()) || !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", p, err)
		}

		files = append(files, ScannedFile{
			TenantID:   tenantID,
			TenantName: name,
			RelPath:    filepath.ToSlash(rel),
			AbsPath:    p,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelPath < files[j].RelPath
	})
	return files, nil
}
