package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"assistant/internal/assistant"
	"assistant/internal/cache"
	"assistant/internal/chunker"
	"assistant/internal/config"
	"assistant/internal/embeddings"
	"assistant/internal/index"
	"assistant/internal/llm"
	"assistant/internal/logger"
	"assistant/internal/queue"
	"assistant/internal/reload"
	"assistant/internal/router"
	"assistant/internal/tools"
)

// Deps bundles the runtime components shared by the binaries.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	LLM       llm.Client
	Embedder  embeddings.Embedder
	Index     *index.Provider
	Cache     cache.Cache
	Queue     queue.Queue
	Assistant *assistant.Assistant
	Reloader  *reload.Reloader

	closers []func() error
}

// Close releases connections opened by Build.
func (d Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadEnv reads .env when present and returns the configuration and logger.
func LoadEnv() (config.Config, *slog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg := config.Load()
	return cfg, logger.New(cfg.LogLevel), nil
}

// Build loads env, config, and shared components. The index is created but
// not loaded; callers decide when to LoadOrBuild.
func Build(ctx context.Context) (Deps, error) {
	cfg, log, err := LoadEnv()
	if err != nil {
		return Deps{}, err
	}
	return BuildWith(ctx, cfg, log)
}

// BuildWith wires components from an explicit configuration.
func BuildWith(ctx context.Context, cfg config.Config, log *slog.Logger) (Deps, error) {
	d := Deps{Config: cfg, Log: log}

	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	store, err := buildIndexStore(ctx, cfg, log, &d)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize index store: %w", err)
	}
	q, err := buildQueue(cfg, log, &d)
	if err != nil {
		_ = d.Close()
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	c := buildCache(cfg, log, &d)

	provider := index.NewProvider(store, embedder, index.Options{
		DocumentsDir: cfg.DocumentsDir,
		Model:        cfg.EmbeddingModel,
		Chunk:        chunker.Options{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap},
	}, log)

	qa := tools.NewQATool(provider, llmClient, log)
	if cfg.CacheProvider != "none" {
		qa = qa.WithCache(c, cfg.CacheTTLDuration())
	}

	d.LLM = llmClient
	d.Embedder = embedder
	d.Index = provider
	d.Cache = c
	d.Queue = q
	d.Assistant = assistant.New(router.New(llmClient, log), qa, tools.NewSummaryTool(llmClient, log), log)
	d.Reloader = reload.New(provider, c, q, log)
	return d, nil
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "ollama":
		client, err := llm.NewOllamaClient(cfg.OllamaBaseURL, cfg.LLMModel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Ollama client: %w", err)
		}
		log.Info("using Ollama LLM client", "base_url", cfg.OllamaBaseURL, "model", cfg.LLMModel)
		return client, nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.LLMModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI LLM client", "model", cfg.LLMModel)
		return client, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: ollama, openai)", cfg.LLMProvider)
	}
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	switch cfg.LLMProvider {
	case "ollama":
		embedder, err := embeddings.NewOllamaEmbedder(cfg.OllamaBaseURL, cfg.EmbeddingModel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Ollama embedder: %w", err)
		}
		log.Info("using Ollama embedder", "model", cfg.EmbeddingModel)
		return embedder, nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		embedder, err := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
		}
		log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel)
		return embedder, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: ollama, openai)", cfg.LLMProvider)
	}
}

func buildIndexStore(ctx context.Context, cfg config.Config, log *slog.Logger, d *Deps) (index.Store, error) {
	switch cfg.IndexProvider {
	case "local":
		log.Info("using local index store", "path", cfg.IndexPath)
		return index.NewLocalStore(cfg.IndexPath), nil
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when INDEX_PROVIDER=postgres")
		}
		db, err := index.NewPostgres(ctx, cfg.DBURL, cfg.EmbeddingDimensions)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		d.closers = append(d.closers, db.Close)
		log.Info("using Postgres index store", "dimensions", cfg.EmbeddingDimensions)
		return db, nil
	default:
		return nil, fmt.Errorf("invalid INDEX_PROVIDER: %s (valid options: local, postgres)", cfg.IndexProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger, d *Deps) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "none", "":
		return queue.NewNoOpQueue(), nil
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL, nats.Name("assistant"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		q := queue.NewNATS(log, nc)
		d.closers = append(d.closers, q.Close)
		log.Info("using NATS queue")
		return q, nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: none, nats)", cfg.QueueProvider)
	}
}

// buildCache falls back to the no-op cache when Redis is unreachable.
func buildCache(cfg config.Config, log *slog.Logger, d *Deps) cache.Cache {
	if cfg.CacheProvider != "redis" {
		return cache.NewNoOpCache()
	}
	rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("redis unavailable, caching disabled", "err", err)
		return cache.NewNoOpCache()
	}
	d.closers = append(d.closers, rc.Close)
	log.Info("using Redis cache", "addr", cfg.RedisAddr)
	return rc
}
