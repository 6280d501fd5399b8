// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	DataDir string
	DBPath  string

	MaxChunkChars      int
	IngestWorkers      int
	EmbeddingBatchSize int
	IndexOnStart       bool

	EmbeddingBaseURL   string
	EmbeddingModelName string
	LLMAPIKey          string

	QdrantURL        string
	QdrantCollection string
	// QdrantVectorSize of 0 disables embedding and the vector store.
	QdrantVectorSize int

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// VectorsEnabled reports whether chunks are embedded and written to Qdrant.
func (c *Config) VectorsEnabled() bool {
	return c.QdrantVectorSize > 0
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// A .env file in the working directory or up to five parents is loaded first;
// variables already set take precedence over its values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		DataDir:            getEnv("DATA_DIR", ""),
		DBPath:             getEnv("DB_PATH", "./data/sectiondocs.db"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "documents"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.DataDir == "" {
		return nil, fmt.Errorf("DATA_DIR is required")
	}

	var err error
	if cfg.MaxChunkChars, err = getPositiveInt("MAX_CHUNK_CHARS", 1400); err != nil {
		return nil, err
	}
	if cfg.IngestWorkers, err = getPositiveInt("INGEST_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.EmbeddingBatchSize, err = getPositiveInt("EMBEDDING_BATCH_SIZE", 32); err != nil {
		return nil, err
	}

	// Must match the output size of the embeddings model. Changing it
	// requires recreating the Qdrant collection.
	if raw := getEnv("QDRANT_VECTOR_SIZE", ""); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
		}
		if size < 0 {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must not be negative")
		}
		cfg.QdrantVectorSize = size
	}

	if raw := getEnv("INDEX_ON_START", "true"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("INDEX_ON_START must be a boolean: %w", err)
		}
		cfg.IndexOnStart = b
	}

	if cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	// Create the database directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// NewLogger builds the process logger described by cfg.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for range 5 {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return // Reached filesystem root
		}
		dir = parent
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %w", err)
	}
	return level, nil
}

func getPositiveInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return n, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
