// Package indexer ingests tenant documents: it chunks them, stores the
// chunks in SQLite and, when configured, embeds them into the vector store.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"sectiondocs/internal/chunker"
	"sectiondocs/internal/contextutil"
	"sectiondocs/internal/storage"
	"sectiondocs/internal/tenant"
	"sectiondocs/internal/vectorstore"
)

const defaultBatchSize = 32

// ErrIndexRunning is returned when IndexAll or ClearAll is called while a
// run is already in progress.
var ErrIndexRunning = errors.New("indexing already running")

// chunkNamespace scopes the name-based UUIDs of chunks.
var chunkNamespace = uuid.MustParse("8d3c5f2e-91a4-4b6e-a7d0-3e5f1c2b9a74")

// Pipeline orchestrates the ingestion of markdown documents into SQLite and,
// optionally, the vector store.
type Pipeline struct {
	tenants     *tenant.Manager
	docRepo     storage.DocumentStore
	chunkRepo   storage.ChunkStore
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	chunker     *chunker.Chunker
	opts        Options
	backoff     func(attempt int) time.Duration
	running     atomic.Bool
}

// NewPipeline creates a new ingestion pipeline.
// The vector stage runs only when both embedder and vectorStore are non-nil.
func NewPipeline(
	tenants *tenant.Manager,
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	opts Options,
) (*Pipeline, error) {
	c, err := chunker.New(opts.MaxChars)
	if err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}

	return &Pipeline{
		tenants:     tenants,
		docRepo:     docRepo,
		chunkRepo:   chunkRepo,
		embedder:    embedder,
		vectorStore: vectorStore,
		chunker:     c,
		opts:        opts,
		backoff:     backoff,
	}, nil
}

// VectorsEnabled reports whether chunks are embedded and sent to the vector store.
func (p *Pipeline) VectorsEnabled() bool {
	return p.embedder != nil && p.vectorStore != nil
}

// Running reports whether an IndexAll or ClearAll call is in progress.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// stableChunkID derives the chunk ID from its tenant, path, position and
// text, so re-ingesting unchanged content yields the same point IDs.
func stableChunkID(tenantName, relPath string, index int, text string) string {
	name := tenantName + "\x00" + relPath + "\x00" + strconv.Itoa(index) + "\x00" + text
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}

// IndexDocument ingests a single document.
// Unchanged documents (same SHA-256) are skipped. A changed document is
// re-chunked in full and its previous chunks are replaced.
func (p *Pipeline) IndexDocument(ctx context.Context, tenantID int, relPath string) error {
	_, err := p.indexDocument(ctx, tenantID, relPath)
	return err
}

func (p *Pipeline) indexDocument(ctx context.Context, tenantID int, relPath string) (bool, error) {
	logger := contextutil.LoggerFromContext(ctx)

	record, err := p.tenants.ByID(tenantID)
	if err != nil {
		return false, err
	}
	absPath, err := p.tenants.AbsPath(tenantID, relPath)
	if err != nil {
		return false, err
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return false, fmt.Errorf("failed to read file %s: %w", absPath, err)
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	existing, err := p.docRepo.GetByTenantAndPath(ctx, tenantID, relPath)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("failed to check existing document: %w", err)
	}
	if existing != nil && existing.Hash == hash {
		logger.DebugContext(ctx, "skipping unchanged document", "tenant", record.Name, "rel_path", relPath)
		return false, nil
	}

	fileName := path.Base(relPath)
	chunks := p.chunker.Chunk(string(content))

	for _, c := range chunks {
		if c.Oversized {
			logger.WarnContext(ctx, "oversized chunk",
				"tenant", record.Name, "rel_path", relPath, "header", c.Header,
				"length", c.Length, "max_chars", p.opts.MaxChars)
		}
	}
	if len(chunks) == 0 {
		logger.WarnContext(ctx, "document produced no chunks", "tenant", record.Name, "rel_path", relPath)
	}

	var vectors [][]float32
	if p.VectorsEnabled() && len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vectors, err = p.embed(ctx, texts)
		if err != nil {
			return false, err
		}
	}

	// The hash is recorded only once every store holds the new chunks, so a
	// failed ingest is retried on the next run.
	doc := &storage.DocumentRecord{
		TenantID:   tenantID,
		RelPath:    relPath,
		FileName:   fileName,
		Title:      extractTitle(content, fileName),
		ChunkCount: len(chunks),
	}
	if err := p.docRepo.Upsert(ctx, doc); err != nil {
		return false, fmt.Errorf("failed to upsert document: %w", err)
	}

	if existing != nil {
		if err := p.removeChunks(ctx, existing.ID); err != nil {
			return false, err
		}
	}

	records := make([]*storage.ChunkRecord, len(chunks))
	points := make([]vectorstore.Point, 0, len(vectors))
	createdDate := time.Now().UTC().Format(time.RFC3339)

	for i, c := range chunks {
		id := stableChunkID(record.Name, relPath, i, c.Text)
		records[i] = &storage.ChunkRecord{
			ID:         id,
			DocumentID: doc.ID,
			ChunkIndex: i,
			Header:     c.Header,
			Text:       c.Text,
			CharLength: c.Length,
			Oversized:  c.Oversized,
		}

		if vectors != nil {
			points = append(points, vectorstore.Point{
				ID:  id,
				Vec: vectors[i],
				Meta: map[string]any{
					vectorstore.PayloadTenant:      record.Name,
					vectorstore.PayloadFileName:    fileName,
					vectorstore.PayloadChunkIndex:  i,
					vectorstore.PayloadHeader:      c.Header,
					vectorstore.PayloadContent:     c.Text,
					vectorstore.PayloadCreatedDate: createdDate,
				},
			})
		}
	}

	if err := p.chunkRepo.InsertBatch(ctx, records); err != nil {
		return false, fmt.Errorf("failed to insert chunks: %w", err)
	}

	if len(points) > 0 {
		if err := p.vectorStore.Upsert(ctx, p.opts.Collection, points); err != nil {
			return false, fmt.Errorf("failed to upsert vectors: %w", err)
		}
	}

	doc.Hash = hash
	if err := p.docRepo.Upsert(ctx, doc); err != nil {
		return false, fmt.Errorf("failed to record document hash: %w", err)
	}

	logger.InfoContext(ctx, "indexed document",
		"tenant", record.Name, "rel_path", relPath, "title", doc.Title, "chunks", len(chunks))
	return true, nil
}

// removeChunks deletes the stored chunks of a document. Vector deletion
// failures are logged and do not abort the ingest.
func (p *Pipeline) removeChunks(ctx context.Context, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if p.VectorsEnabled() {
		ids, err := p.chunkRepo.ListIDsByDocument(ctx, documentID)
		if err != nil {
			return fmt.Errorf("failed to list old chunk IDs: %w", err)
		}
		if len(ids) > 0 {
			if err := p.vectorStore.Delete(ctx, p.opts.Collection, ids); err != nil {
				logger.WarnContext(ctx, "failed to delete old vectors", "document_id", documentID, "count", len(ids), "error", err)
			}
		}
	}

	if err := p.chunkRepo.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete old chunks: %w", err)
	}
	return nil
}

// embed embeds texts in batches of Options.BatchSize.
func (p *Pipeline) embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.opts.BatchSize {
		end := min(start+p.opts.BatchSize, len(texts))

		batch, err := p.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", end-start, len(batch))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (p *Pipeline) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var lastErr error
	for attempt := range maxRetries {
		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		if !isRetryable(err) || attempt == maxRetries-1 {
			break
		}

		logger.WarnContext(ctx, "retryable embedding error", "attempt", attempt, "error", err)
		select {
		case <-time.After(p.backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// IndexAll scans every tenant and ingests its documents on Options.Workers
// goroutines. A failing document is logged and counted; it never stops the
// run. The returned error is non-nil when any document failed or ctx ended.
func (p *Pipeline) IndexAll(ctx context.Context) (RunResult, error) {
	if !p.running.CompareAndSwap(false, true) {
		return RunResult{}, ErrIndexRunning
	}
	defer p.running.Store(false)

	logger := contextutil.LoggerFromContext(ctx)

	files, err := p.tenants.ScanAll(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to scan tenants: %w", err)
	}

	logger.InfoContext(ctx, "starting indexing", "total_files", len(files), "workers", p.opts.Workers)

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = RunResult{Files: len(files)}
		sem    = make(chan struct{}, p.opts.Workers)
	)

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			continue
		}

		wg.Add(1)
		go func(file tenant.ScannedFile) {
			defer wg.Done()
			defer func() { <-sem }()

			indexed, err := p.indexDocument(ctx, file.TenantID, file.RelPath)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Failed++
				logger.ErrorContext(ctx, "failed to index document",
					"tenant", file.TenantName, "rel_path", file.RelPath, "error", err)
			case indexed:
				result.Indexed++
			default:
				result.Skipped++
			}
		}(file)
	}
	wg.Wait()

	logger.InfoContext(ctx, "indexing completed",
		"total_files", result.Files, "indexed", result.Indexed,
		"skipped", result.Skipped, "errors", result.Failed)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if result.Failed > 0 {
		return result, fmt.Errorf("indexing completed with %d errors", result.Failed)
	}
	return result, nil
}

// ClearAll deletes every stored document and chunk, and the vector points
// of every known tenant.
func (p *Pipeline) ClearAll(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrIndexRunning
	}
	defer p.running.Store(false)

	logger := contextutil.LoggerFromContext(ctx)

	if err := p.docRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}

	if p.VectorsEnabled() {
		for _, t := range p.tenants.List() {
			if err := p.vectorStore.DeleteByTenant(ctx, p.opts.Collection, t.Name); err != nil {
				return fmt.Errorf("failed to clear vectors: %w", err)
			}
		}
	}

	logger.InfoContext(ctx, "index cleared")
	return nil
}
