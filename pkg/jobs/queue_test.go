package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var calls int32
	done := make(chan Job, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		done <- job
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Type: "audit"}))

	select {
	case job := <-done:
		assert.Equal(t, 2, job.Attempt)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
}

func TestQueueStopDrainsBufferedJobs(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	release := make(chan struct{})
	q := NewQueue("drain", func(ctx context.Context, job Job) error {
		<-release
		mu.Lock()
		seen = append(seen, job.Payload.(int))
		mu.Unlock()
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 8})
	q.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job{Payload: i}))
	}
	close(release)
	q.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
	assert.ErrorIs(t, q.Enqueue(Job{}), ErrQueueClosed)
}

func TestQueueRejectsWhenFullOrNotStarted(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("full", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})

	assert.ErrorIs(t, q.Enqueue(Job{}), ErrQueueClosed)

	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{}))

	// The worker may or may not have taken the first job yet; either way the
	// buffer fills within two more offers.
	var full bool
	for i := 0; i < 2; i++ {
		if errors.Is(q.Enqueue(Job{}), ErrQueueFull) {
			full = true
			break
		}
	}
	assert.True(t, full)

	close(block)
	q.Stop()
}
