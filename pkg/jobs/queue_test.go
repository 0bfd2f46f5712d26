package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func waitFor(t *testing.T, what string, done func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !done() {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestQueueProcessesJobs(t *testing.T) {
	var handled int32
	q := NewQueue("cards", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&handled, 1)
		return nil
	}, QueueConfig{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "class"}))
	require.NoError(t, q.Enqueue(Job{ID: "j2", Type: "class"}))

	waitFor(t, "jobs to finish", func() bool { return atomic.LoadInt32(&handled) == 2 })
}

func TestQueueRetryLogsCarryWorkerID(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	var attempts int32
	q := NewQueue("cards", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return assert.AnError
		}
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: 5 * time.Millisecond, Logger: zap.New(core)})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "j1", Type: "class"}))

	waitFor(t, "retry", func() bool { return atomic.LoadInt32(&attempts) == 2 })

	entries := logs.FilterMessage("job failed, retrying").All()
	require.NotEmpty(t, entries)
	fields := entries[0].ContextMap()
	assert.Equal(t, "cards", fields["queue"])
	assert.Contains(t, fields, "worker")
	assert.Equal(t, "j1", fields["job_id"])
}
