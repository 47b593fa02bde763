package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pip3-kill-me/ebay-scraper/internal/models"
)

func newTask(id string) *Task {
	return &Task{
		ID:         id,
		SearchTerm: "nvme ssd",
		Bounds:     models.Bounds{MinPricePerTB: 10, MaxPricePerTB: 100, DesiredCount: 5},
		CreatedAt:  time.Now(),
	}
}

func TestQueueFIFOOrder(t *testing.T) {
	q := NewInMemoryQueue()
	defer q.Close()

	require.NoError(t, q.Push(newTask("first")))
	require.NoError(t, q.Push(newTask("second")))
	require.NoError(t, q.Push(newTask("third")))

	assert.Equal(t, 3, q.Size())

	ctx := context.Background()
	for _, want := range []string{"first", "second", "third"} {
		task, err := q.Pop(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, task.ID)
	}
	assert.Equal(t, 0, q.Size())
}

func TestQueuePopBlocksUntilPush(t *testing.T) {
	q := NewInMemoryQueue()
	defer q.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Push(newTask("late"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	task, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "late", task.ID)
}

func TestQueuePopCancelled(t *testing.T) {
	q := NewInMemoryQueue()
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueuePopCancellationRacesPush(t *testing.T) {
	q := NewInMemoryQueue()
	defer q.Close()

	// Cancel waiters at the same moment tasks arrive; every iteration must
	// end in either a task or a context error, never a crash.
	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			task, err := q.Pop(ctx)
			if err == nil {
				assert.NotNil(t, task)
			} else {
				assert.ErrorIs(t, err, context.Canceled)
			}
			close(done)
		}()

		go cancel()
		go q.Push(newTask("racer"))

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("pop neither returned nor was cancelled")
		}
		cancel()
	}
}

func TestQueueClosed(t *testing.T) {
	q := NewInMemoryQueue()
	require.NoError(t, q.Push(newTask("only")))
	require.NoError(t, q.Close())

	assert.ErrorIs(t, q.Push(newTask("rejected")), ErrQueueClosed)

	task, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "only", task.ID)

	_, err = q.Pop(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)
}
