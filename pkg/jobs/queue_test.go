package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 2)
	q := New("mail", func(_ context.Context, job Job[string]) error {
		done <- job.Payload
		return nil
	}, Config{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(context.Background(), Job[string]{ID: "1", Payload: "a"}))
	require.NoError(t, q.TryEnqueue(Job[string]{ID: "2", Payload: "b"}))

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case p := <-done:
			got[p] = true
		case <-time.After(2 * time.Second):
			t.Fatal("job not processed")
		}
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true}, got)
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var calls int32
	done := make(chan struct{})
	q := New("mail", func(_ context.Context, job Job[int]) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("smtp down")
		}
		close(done)
		return nil
	}, Config{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.TryEnqueue(Job[int]{ID: "r"}))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueueRejectsWhenNotRunning(t *testing.T) {
	q := New("mail", func(context.Context, Job[int]) error { return nil }, Config{})

	err := q.TryEnqueue(Job[int]{})
	assert.ErrorIs(t, err, ErrNotStarted)

	q.Start(context.Background())
	q.Stop()
	err = q.Enqueue(context.Background(), Job[int]{})
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestQueueTryEnqueueFull(t *testing.T) {
	block := make(chan struct{})
	q := New("mail", func(ctx context.Context, _ Job[int]) error {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil
	}, Config{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	var full error
	for i := 0; i < 3 && full == nil; i++ {
		full = q.TryEnqueue(Job[int]{})
	}
	assert.ErrorIs(t, full, ErrFull)
}

func TestQueueStopDrainsBufferedJobs(t *testing.T) {
	var delivered int32
	q := New("mail", func(ctx context.Context, _ Job[int]) error {
		time.Sleep(50 * time.Millisecond)
		if ctx.Err() == nil {
			atomic.AddInt32(&delivered, 1)
		}
		return nil
	}, Config{Workers: 1, BufferSize: 4})
	q.Start(context.Background())

	for i := 0; i < 4; i++ {
		require.NoError(t, q.TryEnqueue(Job[int]{Payload: i}))
	}
	q.Stop()

	assert.Equal(t, int32(4), atomic.LoadInt32(&delivered))
	assert.Zero(t, q.Pending())
	assert.ErrorIs(t, q.TryEnqueue(Job[int]{}), ErrNotStarted)
}
