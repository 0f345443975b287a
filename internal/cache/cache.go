package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"assistant/internal/domain"
)

// Cache stores QA results keyed by the question that produced them.
type Cache interface {
	// Get returns the cached result, or nil on a miss.
	Get(ctx context.Context, key string) (*domain.QAResult, error)

	// Set stores a result with a TTL.
	Set(ctx context.Context, key string, result *domain.QAResult, ttl time.Duration) error

	// InvalidateAll drops every cached result, e.g. after the document index changes.
	InvalidateAll(ctx context.Context) error

	Close() error
}

// GenerateCacheKey derives a stable key from a question. Surrounding
// whitespace does not change the key.
func GenerateCacheKey(question string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(question)))
	return hex.EncodeToString(sum[:])
}
