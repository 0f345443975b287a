package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"assistant/internal/retry"
)

// TaskType enumerates task categories broadcast between replicas.
type TaskType string

const (
	// TaskTypeReindex asks every replica to refresh its document index.
	TaskTypeReindex TaskType = "reindex"
)

// Task is one broadcast message.
type Task struct {
	ID        uuid.UUID `json:"id"`
	Type      TaskType  `json:"type"`
	Origin    string    `json:"origin"`
	CreatedAt time.Time `json:"created_at"`
}

type Handler func(context.Context, Task) error

// Queue delivers every published task to every subscriber of its type.
type Queue interface {
	Publish(ctx context.Context, task Task) error
	// Subscribe runs handler for each task of taskType until ctx is done.
	Subscribe(ctx context.Context, taskType TaskType, handler Handler) error
	Close() error
}

// PublishWithRetry publishes with exponential backoff between attempts.
func PublishWithRetry(ctx context.Context, q Queue, task Task, attempts int, base time.Duration) error {
	return retry.Do(ctx, attempts, base, func(ctx context.Context) error {
		return q.Publish(ctx, task)
	})
}
