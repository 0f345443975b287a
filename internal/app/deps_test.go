package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant/internal/cache"
	"assistant/internal/config"
	"assistant/internal/logger"
	"assistant/internal/queue"
)

func baseConfig(t *testing.T) config.Config {
	return config.Config{
		LLMProvider:    "ollama",
		OllamaBaseURL:  "http://localhost:11434",
		LLMModel:       "mistral:7b",
		EmbeddingModel: "all-minilm",
		DocumentsDir:   t.TempDir(),
		ChunkSize:      1000,
		ChunkOverlap:   100,
		IndexProvider:  "local",
		IndexPath:      t.TempDir(),
		CacheProvider:  "none",
		QueueProvider:  "none",
	}
}

func TestBuildWithDefaults(t *testing.T) {
	d, err := BuildWith(context.Background(), baseConfig(t), logger.Nop())
	require.NoError(t, err)
	defer d.Close()

	assert.NotNil(t, d.LLM)
	assert.NotNil(t, d.Embedder)
	assert.NotNil(t, d.Index)
	assert.NotNil(t, d.Assistant)
	assert.NotNil(t, d.Reloader)
	assert.IsType(t, &cache.NoOpCache{}, d.Cache)
	assert.IsType(t, &queue.NoOpQueue{}, d.Queue)
	assert.False(t, d.Index.Ready())
}

func TestBuildWithRejectsBadProviders(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown llm provider", func(c *config.Config) { c.LLMProvider = "bogus" }},
		{"openai without key", func(c *config.Config) { c.LLMProvider = "openai" }},
		{"unknown index provider", func(c *config.Config) { c.IndexProvider = "faiss" }},
		{"postgres without url", func(c *config.Config) { c.IndexProvider = "postgres" }},
		{"nats without url", func(c *config.Config) { c.QueueProvider = "nats" }},
		{"unknown queue provider", func(c *config.Config) { c.QueueProvider = "kafka" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig(t)
			tt.mutate(&cfg)
			_, err := BuildWith(context.Background(), cfg, logger.Nop())
			assert.Error(t, err)
		})
	}
}

func TestRedisFallsBackToNoOp(t *testing.T) {
	cfg := baseConfig(t)
	cfg.CacheProvider = "redis"
	cfg.RedisAddr = "127.0.0.1:1"

	d, err := BuildWith(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer d.Close()
	assert.IsType(t, &cache.NoOpCache{}, d.Cache)
}
