package cache

import (
	"context"
	"time"

	"assistant/internal/domain"
)

// NoOpCache always misses. Used when caching is disabled or Redis is unreachable.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, key string) (*domain.QAResult, error) {
	return nil, nil
}

func (c *NoOpCache) Set(ctx context.Context, key string, result *domain.QAResult, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
