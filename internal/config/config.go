package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration read from the environment.
type Config struct {
	// Server
	Port           int           `env:"PORT" envDefault:"8000"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"120s"`

	// LLM & Embeddings
	LLMProvider         string `env:"LLM_PROVIDER" envDefault:"ollama"` // "ollama" (local OpenAI-compatible endpoint) or "openai"
	OllamaBaseURL       string `env:"OLLAMA_API_BASE_URL" envDefault:"http://localhost:11434"`
	OpenAIKey           string `env:"OPENAI_API_KEY"`
	LLMModel            string `env:"LLM_MODEL" envDefault:"mistral:7b"`
	EmbeddingModel      string `env:"EMBEDDING_MODEL" envDefault:"all-minilm"`
	EmbeddingDimensions int    `env:"EMBEDDING_DIMENSIONS" envDefault:"384"`

	// Documents
	DocumentsDir   string `env:"DOCUMENTS_DIR" envDefault:"data/documents"`
	ChunkSize      int    `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap   int    `env:"CHUNK_OVERLAP" envDefault:"100"`
	WatchDocuments bool   `env:"WATCH_DOCUMENTS" envDefault:"false"`

	// Index
	IndexProvider string `env:"INDEX_PROVIDER" envDefault:"local"` // "local" (on-disk snapshot) or "postgres" (pgvector)
	IndexPath     string `env:"INDEX_PATH" envDefault:"data/doc_index"`
	DBURL         string `env:"DB_URL"`

	// Cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"none"` // "none" or "redis"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"3600"` // seconds

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"none"` // "none" or "nats" (reindex broadcast between replicas)
	QueueURL      string `env:"QUEUE_URL"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

// CacheTTLDuration returns CacheTTL as a time.Duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}
