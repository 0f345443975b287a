package reload

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"assistant/internal/cache"
	"assistant/internal/queue"
)

// Builder rebuilds the document index. SharedStore reports whether replicas
// read the same store, so a peer's rebuild is already persisted.
type Builder interface {
	LoadOrBuild(ctx context.Context, force bool) error
	SharedStore() bool
}

// Reloader rebuilds the index, drops cached answers and tells peer replicas
// to do the same.
type Reloader struct {
	builder Builder
	cache   cache.Cache
	queue   queue.Queue
	origin  string
	log     *slog.Logger
}

func New(b Builder, c cache.Cache, q queue.Queue, log *slog.Logger) *Reloader {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	if q == nil {
		q = queue.NewNoOpQueue()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reloader{builder: b, cache: c, queue: q, origin: uuid.NewString(), log: log}
}

// Origin identifies this replica in broadcast tasks.
func (r *Reloader) Origin() string { return r.origin }

// Reload force-rebuilds the local index and broadcasts a reindex task.
// The broadcast is best effort; only a failed rebuild is an error.
func (r *Reloader) Reload(ctx context.Context) error {
	if err := r.rebuild(ctx, true); err != nil {
		return err
	}
	task := queue.Task{
		ID:        uuid.New(),
		Type:      queue.TaskTypeReindex,
		Origin:    r.origin,
		CreatedAt: time.Now().UTC(),
	}
	if err := queue.PublishWithRetry(ctx, r.queue, task, 3, 200*time.Millisecond); err != nil {
		r.log.Warn("failed to notify peers of reindex", "err", err)
	}
	return nil
}

// HandleTask refreshes the local index on a reindex task published by another
// replica: a shared store is reloaded as the peer left it, a local one is
// rebuilt from the documents directory.
func (r *Reloader) HandleTask(ctx context.Context, task queue.Task) error {
	if task.Type != queue.TaskTypeReindex || task.Origin == r.origin {
		return nil
	}
	shared := r.builder.SharedStore()
	r.log.Info("peer requested reindex", "origin", task.Origin, "task_id", task.ID, "shared_store", shared)
	return r.rebuild(ctx, !shared)
}

func (r *Reloader) rebuild(ctx context.Context, force bool) error {
	if err := r.builder.LoadOrBuild(ctx, force); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	if err := r.cache.InvalidateAll(ctx); err != nil {
		r.log.Warn("failed to invalidate answer cache", "err", err)
	}
	return nil
}
