package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink struct {
	mu       sync.Mutex
	seen     []string
	failures map[string]int
}

func (s *sink) handle(_ context.Context, job Job[string]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures[job.ID] > 0 {
		s.failures[job.ID]--
		return errors.New("transient")
	}
	s.seen = append(s.seen, job.Payload)
	return nil
}

func (s *sink) values() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen...)
}

func TestQueueProcessesAndDrainsOnStop(t *testing.T) {
	s := &sink{}
	q := NewQueue[string]("audit", s.handle, QueueConfig{Workers: 2})
	q.Start(context.Background())

	for _, v := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(context.Background(), Job[string]{ID: v, Payload: v}))
	}
	q.Stop(context.Background())

	assert.ElementsMatch(t, []string{"a", "b", "c"}, s.values())
	assert.Equal(t, int64(3), q.Stats().Processed)
	assert.ErrorIs(t, q.Enqueue(context.Background(), Job[string]{ID: "d"}), ErrQueueClosed)
}

func TestQueueRetriesTransientFailures(t *testing.T) {
	s := &sink{failures: map[string]int{"x": 2}}
	q := NewQueue[string]("audit", s.handle, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.TryEnqueue(Job[string]{ID: "x", Payload: "x"}))
	require.Eventually(t, func() bool { return len(s.values()) == 1 }, time.Second, 5*time.Millisecond)
	q.Stop(context.Background())

	stats := q.Stats()
	assert.Equal(t, int64(2), stats.Retried)
	assert.Equal(t, int64(1), stats.Processed)
	assert.Zero(t, stats.Failed)
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	s := &sink{failures: map[string]int{"x": 10}}
	q := NewQueue[string]("audit", s.handle, QueueConfig{MaxRetries: 1, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.TryEnqueue(Job[string]{ID: "x", Payload: "x"}))
	require.Eventually(t, func() bool { return q.Stats().Failed == 1 }, time.Second, 5*time.Millisecond)
	q.Stop(context.Background())
	assert.Empty(t, s.values())
}

func TestTryEnqueueReportsFullBuffer(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue[string]("audit", func(context.Context, Job[string]) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())

	require.NoError(t, q.TryEnqueue(Job[string]{ID: "1"}))
	require.Eventually(t, func() bool { return q.TryEnqueue(Job[string]{ID: "2"}) == nil }, time.Second, time.Millisecond)
	assert.ErrorIs(t, q.TryEnqueue(Job[string]{ID: "3"}), ErrQueueFull)
	assert.GreaterOrEqual(t, q.Stats().Dropped, int64(1))

	close(block)
	q.Stop(context.Background())
	assert.Equal(t, int64(2), q.Stats().Processed)
}

func TestEnqueueBeforeStart(t *testing.T) {
	q := NewQueue[string]("audit", func(context.Context, Job[string]) error { return nil }, QueueConfig{})
	assert.ErrorIs(t, q.TryEnqueue(Job[string]{ID: "1"}), ErrQueueClosed)
	q.Stop(context.Background())
}
