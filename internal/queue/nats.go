package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"assistant/internal/retry"
)

const (
	subjectPrefix   = "assistant.tasks."
	handlerAttempts = 3
)

// NewNATS constructs a broadcast queue on a NATS connection.
func NewNATS(log *slog.Logger, nc *nats.Conn) Queue {
	return &natsQueue{log: log, nc: nc, retryBase: time.Second}
}

type natsQueue struct {
	log       *slog.Logger
	nc        *nats.Conn
	retryBase time.Duration
}

func (q *natsQueue) Publish(_ context.Context, task Task) error {
	if task.Type == "" {
		return errors.New("task type required")
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	body, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.nc.Publish(subjectPrefix+string(task.Type), body)
}

// Subscribe uses a plain subscription, not a queue group, so every replica
// receives the task.
func (q *natsQueue) Subscribe(ctx context.Context, taskType TaskType, handler Handler) error {
	sub, err := q.nc.Subscribe(subjectPrefix+string(taskType), func(msg *nats.Msg) {
		q.handleMessage(ctx, msg, handler)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}

func (q *natsQueue) handleMessage(ctx context.Context, msg *nats.Msg, handler Handler) {
	var task Task
	if err := json.Unmarshal(msg.Data, &task); err != nil {
		q.log.Error("failed to decode task", "err", err)
		return
	}
	err := retry.Do(ctx, handlerAttempts, q.retryBase, func(ctx context.Context) error {
		return handler(ctx, task)
	})
	if err != nil {
		q.log.Error("task failed", "id", task.ID, "type", task.Type, "origin", task.Origin, "err", err)
	}
}

func (q *natsQueue) Close() error {
	return q.nc.Drain()
}
