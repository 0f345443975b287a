package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"

	"assistant/internal/chunker"
	"assistant/internal/embeddings"
	"assistant/internal/loader"
	"assistant/internal/metrics"
)

// Options configures how a Provider builds its index.
type Options struct {
	DocumentsDir string
	Model        string
	Chunk        chunker.Options
}

type active struct {
	searcher Searcher
}

// Provider owns the active index. Searches read it without locking; builds
// are serialized and swap it in atomically when complete.
type Provider struct {
	store    Store
	embedder embeddings.Embedder
	opts     Options
	log      *slog.Logger

	current atomic.Pointer[active]
	builtAt atomic.Time
	buildMu sync.Mutex
}

func NewProvider(store Store, embedder embeddings.Embedder, opts Options, log *slog.Logger) *Provider {
	if log == nil {
		log = slog.Default()
	}
	return &Provider{store: store, embedder: embedder, opts: opts, log: log}
}

// LoadOrBuild activates the stored index when it exists and was built with
// the configured model; otherwise, or when force is set, it rebuilds from
// the documents directory and saves the result.
func (p *Provider) LoadOrBuild(ctx context.Context, force bool) error {
	p.buildMu.Lock()
	defer p.buildMu.Unlock()

	if !force {
		s, err := p.store.Load(ctx)
		switch {
		case err == nil && s.Model() == p.opts.Model:
			p.activate(s)
			metrics.SetIndexFragments(s.Len())
			p.log.Info("loaded document index", "fragments", s.Len(), "model", s.Model())
			return nil
		case err == nil:
			p.log.Info("stored index uses a different embedding model; rebuilding",
				"stored_model", s.Model(), "model", p.opts.Model)
		case errors.Is(err, ErrNoIndex):
			p.log.Info("no stored document index; building")
		default:
			p.log.Warn("stored document index unusable; rebuilding", "err", err)
		}
	}

	start := time.Now()
	s, err := p.build(ctx)
	metrics.ObserveIndexBuild(lenOf(s), err)
	if err != nil {
		return err
	}
	p.activate(s)
	p.log.Info("built document index", "fragments", s.Len(), "duration", time.Since(start).String())
	return nil
}

func (p *Provider) build(ctx context.Context) (Searcher, error) {
	docs, err := loader.LoadDir(ctx, p.opts.DocumentsDir, p.log)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	var entries []Entry
	var texts []string
	for _, d := range docs {
		for _, c := range chunker.ChunkText(d.Content, p.opts.Chunk) {
			entries = append(entries, Entry{Source: d.Source, Content: c.Text})
			texts = append(texts, c.Text)
		}
	}

	if len(texts) > 0 {
		vecs, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed fragments: %w", err)
		}
		if len(vecs) != len(entries) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d fragments", len(vecs), len(entries))
		}
		for i := range entries {
			entries[i].Vector = vecs[i]
		}
	}

	s, err := p.store.Save(ctx, p.opts.Model, entries)
	if err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}
	return s, nil
}

func (p *Provider) activate(s Searcher) {
	p.current.Store(&active{searcher: s})
	p.builtAt.Store(time.Now())
}

// SimilaritySearch returns up to k fragments closest to query, best first.
func (p *Provider) SimilaritySearch(ctx context.Context, query string, k int) ([]Fragment, error) {
	cur := p.current.Load()
	if cur == nil {
		return nil, ErrNotReady
	}
	if k <= 0 {
		return []Fragment{}, nil
	}
	vec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return cur.searcher.Search(ctx, vec, k)
}

// Ready reports whether an index is active.
func (p *Provider) Ready() bool { return p.current.Load() != nil }

// Len is the number of fragments in the active index.
func (p *Provider) Len() int {
	cur := p.current.Load()
	if cur == nil {
		return 0
	}
	return cur.searcher.Len()
}

// ActivatedAt is when the active index was loaded or built.
func (p *Provider) ActivatedAt() time.Time { return p.builtAt.Load() }

// SharedStore reports whether the backing store is shared between replicas,
// in which case a rebuild done elsewhere is picked up by loading.
func (p *Provider) SharedStore() bool {
	sh, ok := p.store.(interface{ Shared() bool })
	return ok && sh.Shared()
}

func lenOf(s Searcher) int {
	if s == nil {
		return 0
	}
	return s.Len()
}
