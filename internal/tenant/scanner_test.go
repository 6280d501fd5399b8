package tenant

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/mock/gomock"

	"sectiondocs/internal/storage/mocks"
)

func TestManager_ScanAll(t *testing.T) {
	root := t.TempDir()

	files := []string{
		"globex/handbook.md",
		"acme/policies/leave.md",
		"acme/handbook.md",
		"acme/notes.txt",
		"acme/.drafts/wip.md",
		"acme/.hidden.md",
		"acme/UPPER.MD",
	}
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(full, []byte("# Test"), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}

	ctrl := gomock.NewController(t)
	store := mocks.NewMockTenantStore(ctrl)
	expectTenants(store, root, "acme", "globex")

	manager, err := NewManager(context.Background(), store, root)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	scanned, err := manager.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("ScanAll() error = %v", err)
	}

	want := []struct {
		tenant  string
		relPath string
	}{
		{"acme", "UPPER.MD"},
		{"acme", "handbook.md"},
		{"acme", "policies/leave.md"},
		{"globex", "handbook.md"},
	}
	if len(scanned) != len(want) {
		t.Fatalf("ScanAll() returned %d files, want %d: %+v", len(scanned), len(want), scanned)
	}
	for i, w := range want {
		got := scanned[i]
		if got.TenantName != w.tenant || got.RelPath != w.relPath {
			t.Errorf("file %d = %s/%s, want %s/%s", i, got.TenantName, got.RelPath, w.tenant, w.relPath)
		}
		wantAbs := filepath.Join(root, w.tenant, filepath.FromSlash(w.relPath))
		if got.AbsPath != wantAbs {
			t.Errorf("file %d AbsPath = %q, want %q", i, got.AbsPath, wantAbs)
		}
	}

	if name := scanned[2].FileName(); name != "leave.md" {
		t.Errorf("FileName() = %q, want leave.md", name)
	}
}

func TestManager_ScanAll_Cancelled(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "acme")

	ctrl := gomock.NewController(t)
	store := mocks.NewMockTenantStore(ctrl)
	expectTenants(store, root, "acme")

	manager, err := NewManager(context.Background(), store, root)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := manager.ScanAll(ctx); err == nil {
		t.Error("ScanAll() with cancelled context should return error")
	}
}
