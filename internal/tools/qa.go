package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"assistant/internal/cache"
	"assistant/internal/domain"
	"assistant/internal/index"
	"assistant/internal/llm"
	"assistant/internal/metrics"
	"assistant/internal/prompts"
)

const (
	// TopK is how many fragments ground an answer.
	TopK = 3
	// PreviewRunes is the length of a source preview before the ellipsis.
	PreviewRunes = 200

	unknownSource = "Unknown"
)

// QATool answers a question from the fragments most similar to it.
type QATool struct {
	index index.Index
	llm   llm.Client
	cache cache.Cache
	ttl   time.Duration
	log   *slog.Logger
}

func NewQATool(idx index.Index, client llm.Client, log *slog.Logger) *QATool {
	if log == nil {
		log = slog.Default()
	}
	return &QATool{index: idx, llm: client, log: log}
}

// WithCache enables result caching. Cache failures never fail a question.
func (t *QATool) WithCache(c cache.Cache, ttl time.Duration) *QATool {
	t.cache = c
	t.ttl = ttl
	return t
}

func (t *QATool) Run(ctx context.Context, question string) (domain.QAResult, error) {
	key := cache.GenerateCacheKey(question)
	if cached := t.cached(ctx, key); cached != nil {
		return *cached, nil
	}

	frags, err := t.index.SimilaritySearch(ctx, question, TopK)
	if err != nil {
		return domain.QAResult{}, fmt.Errorf("search documents: %w", err)
	}

	contexts := make([]string, 0, len(frags))
	sources := make([]domain.SourceDocument, 0, len(frags))
	for _, f := range frags {
		contexts = append(contexts, f.Content)
		src := f.Source
		if src == "" {
			src = unknownSource
		}
		sources = append(sources, domain.SourceDocument{Content: Preview(f.Content), Source: src})
	}

	start := time.Now()
	answer, err := t.llm.Complete(ctx, prompts.QA(question, contexts))
	metrics.ObserveLLM("qa", start, err)
	if err != nil {
		return domain.QAResult{}, fmt.Errorf("qa completion: %w", err)
	}

	result := domain.QAResult{Answer: answer, Sources: sources}
	t.store(ctx, key, &result)
	return result, nil
}

func (t *QATool) cached(ctx context.Context, key string) *domain.QAResult {
	if t.cache == nil {
		return nil
	}
	res, err := t.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.IncCacheLookup("error")
		t.log.Warn("qa cache lookup failed", "err", err)
		return nil
	case res == nil:
		metrics.IncCacheLookup("miss")
		return nil
	default:
		metrics.IncCacheLookup("hit")
		return res
	}
}

func (t *QATool) store(ctx context.Context, key string, result *domain.QAResult) {
	if t.cache == nil {
		return
	}
	if err := t.cache.Set(ctx, key, result, t.ttl); err != nil {
		t.log.Warn("qa cache store failed", "err", err)
	}
}

// Preview is the first PreviewRunes runes of content followed by "...".
// The ellipsis is appended even when nothing was cut.
func Preview(content string) string {
	r := []rune(content)
	if len(r) > PreviewRunes {
		r = r[:PreviewRunes]
	}
	return string(r) + "..."
}
