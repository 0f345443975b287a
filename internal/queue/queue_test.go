package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"assistant/internal/logger"
)

func TestPublishWithRetry(t *testing.T) {
	task := Task{Type: TaskTypeReindex, Origin: "a"}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		q := new(MockQueue)
		q.On("Publish", mock.Anything, task).Return(errors.New("no responders")).Twice()
		q.On("Publish", mock.Anything, task).Return(nil).Once()

		require.NoError(t, PublishWithRetry(context.Background(), q, task, 3, time.Millisecond))
		q.AssertNumberOfCalls(t, "Publish", 3)
	})

	t.Run("gives up", func(t *testing.T) {
		q := new(MockQueue)
		q.On("Publish", mock.Anything, task).Return(errors.New("closed"))

		assert.Error(t, PublishWithRetry(context.Background(), q, task, 2, time.Millisecond))
		q.AssertNumberOfCalls(t, "Publish", 2)
	})
}

func TestNoOpQueue(t *testing.T) {
	q := NewNoOpQueue()
	require.NoError(t, q.Publish(context.Background(), Task{Type: TaskTypeReindex}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Subscribe(ctx, TaskTypeReindex, nil) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Subscribe did not return after cancel")
	}
	assert.NoError(t, q.Close())
}

func TestNATSHandleMessage(t *testing.T) {
	q := &natsQueue{log: logger.Nop(), retryBase: time.Millisecond}
	want := Task{ID: uuid.New(), Type: TaskTypeReindex, Origin: "replica-a"}
	body, err := json.Marshal(want)
	require.NoError(t, err)

	t.Run("retries failing handler", func(t *testing.T) {
		calls := 0
		q.handleMessage(context.Background(), &nats.Msg{Data: body}, func(_ context.Context, got Task) error {
			calls++
			assert.Equal(t, want.ID, got.ID)
			assert.Equal(t, "replica-a", got.Origin)
			if calls < 2 {
				return errors.New("busy")
			}
			return nil
		})
		assert.Equal(t, 2, calls)
	})

	t.Run("drops undecodable message", func(t *testing.T) {
		q.handleMessage(context.Background(), &nats.Msg{Data: []byte("{")}, func(context.Context, Task) error {
			t.Fatal("handler must not run")
			return nil
		})
	})
}

func TestNATSPublishRequiresType(t *testing.T) {
	q := &natsQueue{log: logger.Nop()}
	assert.Error(t, q.Publish(context.Background(), Task{}))
}
