package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sectiondocs/internal/config"
	"sectiondocs/internal/http"
	"sectiondocs/internal/indexer"
	"sectiondocs/internal/llm"
	"sectiondocs/internal/service"
	"sectiondocs/internal/storage"
	"sectiondocs/internal/tenant"
	"sectiondocs/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API chunks per-tenant markdown documents into header-prefixed sections
// and stores them in SQLite and, optionally, Qdrant.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: sectiondocs API
//   version: 1.0.0
// schemes:
//   - http
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	slog.SetDefault(cfg.NewLogger())
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	tenantRepo := storage.NewTenantRepo(db)
	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)
	statsRepo := storage.NewStatsRepo(db)

	tenants, err := tenant.NewManager(ctx, tenantRepo, cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize tenant manager: %v", err)
	}
	slog.Info("Tenants discovered", "data_dir", cfg.DataDir, "count", len(tenants.List()))

	// The vector stage is optional. Interfaces stay nil when it is disabled.
	var (
		embedder    indexer.Embedder
		vectorStore vectorstore.VectorStore
	)
	if cfg.VectorsEnabled() {
		qdrant, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		defer func() {
			_ = qdrant.Close()
		}()

		if err := qdrant.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

		// Fail fast when the model output does not match the collection.
		client := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
		if _, err := client.EmbedTexts(ctx, []string{"test"}); err != nil {
			log.Fatalf("Failed to validate embedding client: %v", err)
		}
		slog.Info("Embedding client validated", "model", cfg.EmbeddingModelName, "vector_size", cfg.QdrantVectorSize)

		embedder = client
		vectorStore = qdrant
	} else {
		slog.Info("Vector stage disabled, chunks are stored in SQLite only")
	}

	pipeline, err := indexer.NewPipeline(tenants, docRepo, chunkRepo, embedder, vectorStore, indexer.Options{
		MaxChars:       cfg.MaxChunkChars,
		Workers:        cfg.IngestWorkers,
		BatchSize:      cfg.EmbeddingBatchSize,
		Collection:     cfg.QdrantCollection,
		EmbeddingModel: cfg.EmbeddingModelName,
	})
	if err != nil {
		log.Fatalf("Failed to create indexing pipeline: %v", err)
	}

	statsModel := ""
	if cfg.VectorsEnabled() {
		statsModel = cfg.EmbeddingModelName
	}

	router := http.NewRouter(&http.Deps{
		DB:          statsRepo,
		VectorStore: vectorStore,
		Collection:  cfg.QdrantCollection,
		Catalog:     service.NewCatalogService(tenants, tenantRepo, docRepo, vectorStore, cfg.QdrantCollection),
		Chunks:      service.NewChunkService(cfg.MaxChunkChars),
		Indexer:     pipeline,
		Stats:       indexer.NewCoverageReporter(statsRepo, cfg.MaxChunkChars, statsModel),
	})

	if cfg.IndexOnStart {
		go func() {
			slog.Info("Starting background indexing of tenants")
			result, err := pipeline.IndexAll(ctx)
			if err != nil {
				slog.Error("Indexing completed with errors", "error", err, "indexed", result.Indexed, "failed", result.Failed)
				return
			}
			slog.Info("Indexing completed successfully", "indexed", result.Indexed, "skipped", result.Skipped)
		}()
	}

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed: %v", err)
	}
	slog.Info("API server stopped")
}
