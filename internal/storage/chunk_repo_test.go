package storage

import (
	"context"
	"errors"
	"testing"
)

// createDocument creates a tenant and one document to hang chunks on.
func createDocument(t *testing.T, tenants *TenantRepo, docs *DocumentRepo) *DocumentRecord {
	t.Helper()
	tenant := createTenant(t, tenants, "HR")
	doc := &DocumentRecord{TenantID: tenant.ID, RelPath: "test.md", FileName: "test.md", Title: "Test", Hash: "hash"}
	if err := docs.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	return doc
}

func TestChunkRepo_Insert(t *testing.T) {
	db := newTestDB(t)
	doc := createDocument(t, NewTenantRepo(db), NewDocumentRepo(db))
	repo := NewChunkRepo(db)
	ctx := context.Background()

	tests := []struct {
		name    string
		chunk   *ChunkRecord
		wantErr bool
	}{
		{
			name: "valid chunk",
			chunk: &ChunkRecord{
				ID:         "chunk-1",
				DocumentID: doc.ID,
				ChunkIndex: 0,
				Header:     "## Heading",
				Text:       "## Heading\n\nChunk text",
				CharLength: 22,
			},
			wantErr: false,
		},
		{
			name: "oversized chunk",
			chunk: &ChunkRecord{
				ID:         "chunk-2",
				DocumentID: doc.ID,
				ChunkIndex: 1,
				Header:     "## Heading",
				Text:       "## Heading\n\nSupercalifragilistic",
				CharLength: 32,
				Oversized:  true,
			},
			wantErr: false,
		},
		{
			name: "duplicate ID",
			chunk: &ChunkRecord{
				ID:         "chunk-1",
				DocumentID: doc.ID,
				ChunkIndex: 2,
				Header:     "## Heading",
				Text:       "dup",
			},
			wantErr: true,
		},
		{
			name: "unknown document",
			chunk: &ChunkRecord{
				ID:         "chunk-3",
				DocumentID: "missing",
				Header:     "## Heading",
				Text:       "orphan",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Insert(ctx, tt.chunk)
			if tt.wantErr {
				if err == nil {
					t.Error("Insert() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Insert() unexpected error: %v", err)
			}

			got, err := repo.GetByID(ctx, tt.chunk.ID)
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}
			if got.Text != tt.chunk.Text || got.Header != tt.chunk.Header ||
				got.CharLength != tt.chunk.CharLength || got.Oversized != tt.chunk.Oversized {
				t.Errorf("GetByID() = %+v, want %+v", got, tt.chunk)
			}
		})
	}
}

func TestChunkRepo_InsertBatch(t *testing.T) {
	db := newTestDB(t)
	doc := createDocument(t, NewTenantRepo(db), NewDocumentRepo(db))
	repo := NewChunkRepo(db)
	ctx := context.Background()

	if err := repo.InsertBatch(ctx, nil); err != nil {
		t.Fatalf("InsertBatch(nil) error = %v", err)
	}

	batch := []*ChunkRecord{
		{ID: "b", DocumentID: doc.ID, ChunkIndex: 1, Header: "## A", Text: "two"},
		{ID: "a", DocumentID: doc.ID, ChunkIndex: 0, Header: "## A", Text: "one"},
		{ID: "c", DocumentID: doc.ID, ChunkIndex: 2, Header: "## B", Text: "three"},
	}
	if err := repo.InsertBatch(ctx, batch); err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}

	ids, err := repo.ListIDsByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(ids) != len(want) {
		t.Fatalf("ListIDsByDocument() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ListIDsByDocument()[%d] = %s, want %s", i, ids[i], want[i])
		}
	}

	chunks, err := repo.ListByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListByDocument() error = %v", err)
	}
	if len(chunks) != 3 || chunks[0].Text != "one" || chunks[2].Header != "## B" {
		t.Errorf("ListByDocument() = %+v", chunks)
	}
}

func TestChunkRepo_InsertBatch_RollsBack(t *testing.T) {
	db := newTestDB(t)
	doc := createDocument(t, NewTenantRepo(db), NewDocumentRepo(db))
	repo := NewChunkRepo(db)
	ctx := context.Background()

	batch := []*ChunkRecord{
		{ID: "a", DocumentID: doc.ID, ChunkIndex: 0, Header: "## A", Text: "one"},
		{ID: "a", DocumentID: doc.ID, ChunkIndex: 1, Header: "## A", Text: "dup"},
	}
	if err := repo.InsertBatch(ctx, batch); err == nil {
		t.Fatal("InsertBatch() with duplicate IDs should fail")
	}

	ids, err := repo.ListIDsByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ListIDsByDocument() = %v, want none after rollback", ids)
	}
}

func TestChunkRepo_DeleteByDocument(t *testing.T) {
	db := newTestDB(t)
	doc := createDocument(t, NewTenantRepo(db), NewDocumentRepo(db))
	repo := NewChunkRepo(db)
	ctx := context.Background()

	for i, id := range []string{"x", "y"} {
		if err := repo.Insert(ctx, &ChunkRecord{ID: id, DocumentID: doc.ID, ChunkIndex: i, Header: "## A", Text: id}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	if err := repo.DeleteByDocument(ctx, doc.ID); err != nil {
		t.Fatalf("DeleteByDocument() error = %v", err)
	}

	ids, err := repo.ListIDsByDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListIDsByDocument() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ListIDsByDocument() = %v, want empty", ids)
	}
}

func TestChunkRepo_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewChunkRepo(db)

	chunk, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if chunk != nil {
		t.Error("GetByID() should return nil chunk")
	}
}
