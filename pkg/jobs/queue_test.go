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

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var calls int32
	done := make(chan string, 1)
	q := NewQueue("test", func(_ context.Context, job Job[string]) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		done <- job.Payload
		return nil
	}, QueueConfig{MaxRetries: 5, RetryDelay: 5 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[string]{ID: "1", Type: "daily", Payload: "2024-05-01"}))

	select {
	case payload := <-done:
		assert.Equal(t, "2024-05-01", payload)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(context.Context, Job[int]) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job[int]{ID: "x"}))
}

func TestTickerRunsImmediatelyAndStops(t *testing.T) {
	ran := make(chan struct{}, 4)
	tk := NewTicker("daily", time.Hour, func(context.Context) { ran <- struct{}{} }, nil)
	tk.Start(context.Background())

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task did not run on start")
	}
	tk.Stop()
	tk.Stop()
}
