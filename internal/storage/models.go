package storage

import "time"

// TenantRecord represents a tenant (one sub-directory of the data dir) in the database.
type TenantRecord struct {
	ID        int
	Name      string
	RootPath  string
	CreatedAt time.Time
}

// DocumentRecord represents an ingested markdown file.
type DocumentRecord struct {
	ID         string    // UUID
	TenantID   int       // Foreign key to tenants.id
	RelPath    string    // Relative path from tenant root, forward slashes
	FileName   string    // Base name of the file
	Title      string    // First H1/H2 or derived from file name
	Hash       string    // SHA256 hex string of file content
	ChunkCount int       // Chunks produced on the last ingest
	UpdatedAt  time.Time
}

// ChunkRecord represents one chunk of a document.
type ChunkRecord struct {
	ID         string // UUID (same as Qdrant point ID)
	DocumentID string // Foreign key to documents.id
	ChunkIndex int    // Index within document (starts at 0)
	Header     string // Section header, e.g. "## Leave policy"
	Text       string // Chunk text, header included
	CharLength int    // Length of Text in characters
	Oversized  bool   // Text exceeds the configured budget
	CreatedAt  time.Time
}
