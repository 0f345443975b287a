package index

import (
	"context"
	"errors"

	"assistant/internal/embeddings"
)

var (
	// ErrNotReady is returned by searches issued before any index is loaded.
	ErrNotReady = errors.New("document index not ready")
	// ErrNoIndex is returned by a Store that holds no usable index.
	ErrNoIndex = errors.New("no stored document index")
)

// Fragment is one chunk of a source document returned by a search.
type Fragment struct {
	Content string
	Source  string
	Score   float32
}

// Entry is a chunk with its embedding, the unit persisted by a Store.
type Entry struct {
	Source  string            `json:"source"`
	Content string            `json:"content"`
	Vector  embeddings.Vector `json:"vector"`
}

// Searcher answers nearest-neighbor queries over one built index.
type Searcher interface {
	Search(ctx context.Context, vector embeddings.Vector, k int) ([]Fragment, error)
	Len() int
	// Model is the embedding model the index was built with.
	Model() string
}

// Store persists built indexes.
type Store interface {
	// Load returns the stored index or ErrNoIndex.
	Load(ctx context.Context) (Searcher, error)
	// Save replaces the stored index with entries and returns a searcher over it.
	Save(ctx context.Context, model string, entries []Entry) (Searcher, error)
}

// Index is the query-time view of the document index.
type Index interface {
	SimilaritySearch(ctx context.Context, query string, k int) ([]Fragment, error)
}
