package queue

import "context"

// NoOpQueue drops published tasks. Used by single-replica deployments.
type NoOpQueue struct{}

func NewNoOpQueue() *NoOpQueue { return &NoOpQueue{} }

func (NoOpQueue) Publish(context.Context, Task) error { return nil }

func (NoOpQueue) Subscribe(ctx context.Context, _ TaskType, _ Handler) error {
	<-ctx.Done()
	return nil
}

func (NoOpQueue) Close() error { return nil }
