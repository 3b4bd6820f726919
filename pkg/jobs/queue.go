package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrQueueClosed is returned when enqueueing on a queue that is not running.
var ErrQueueClosed = errors.New("queue is not running")

// ErrQueueFull is returned by TryEnqueue when the buffer has no room.
var ErrQueueFull = errors.New("queue is full")

// Job wraps a payload with its delivery bookkeeping.
type Job[T any] struct {
	ID       string
	Payload  T
	Attempt  int
	Enqueued time.Time
}

// Handler processes one job.
type Handler[T any] func(context.Context, Job[T]) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Stats counts outcomes since start.
type Stats struct {
	Processed int64
	Retried   int64
	Failed    int64
	Dropped   int64
}

// Queue is an in-memory worker pool. Failed jobs are retried with a linear
// backoff; Stop drains what is already buffered before returning.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	cfg     QueueConfig
	logger  *zap.Logger

	jobs      chan Job[T]
	retryStop chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	workers   sync.WaitGroup
	retries   sync.WaitGroup
	mu        sync.RWMutex
	running   bool
	stopping  bool

	processed atomic.Int64
	retried   atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewQueue builds a queue that feeds jobs to handler.
func NewQueue[T any](name string, handler Handler[T], cfg QueueConfig) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue[T]{
		name:      name,
		handler:   handler,
		cfg:       cfg,
		logger:    cfg.Logger.With(zap.String("queue", name)),
		jobs:      make(chan Job[T], cfg.BufferSize),
		retryStop: make(chan struct{}),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running || q.stopping {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.workers.Add(1)
		go q.worker()
	}
	q.running = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop refuses new jobs, waits for buffered jobs to be handled or ctx to end,
// then stops the workers.
func (q *Queue[T]) Stop(ctx context.Context) {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.stopping = true
	q.mu.Unlock()

	close(q.retryStop)
	q.retries.Wait()
	close(q.jobs)

	done := make(chan struct{})
	go func() {
		q.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		q.cancel()
		<-done
	}
	q.cancel()
	q.logger.Info("queue stopped",
		zap.Int64("processed", q.processed.Load()),
		zap.Int64("failed", q.failed.Load()),
		zap.Int64("dropped", q.dropped.Load()))
}

// Enqueue blocks until the job is buffered or ctx ends.
func (q *Queue[T]) Enqueue(ctx context.Context, job Job[T]) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return ErrQueueClosed
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.ctx.Done():
		return ErrQueueClosed
	}
}

// TryEnqueue buffers the job without blocking.
func (q *Queue[T]) TryEnqueue(job Job[T]) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return ErrQueueClosed
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		q.dropped.Add(1)
		return ErrQueueFull
	}
}

// Stats returns counters since start.
func (q *Queue[T]) Stats() Stats {
	return Stats{
		Processed: q.processed.Load(),
		Retried:   q.retried.Load(),
		Failed:    q.failed.Load(),
		Dropped:   q.dropped.Load(),
	}
}

func (q *Queue[T]) worker() {
	defer q.workers.Done()
	for job := range q.jobs {
		q.process(job)
	}
}

func (q *Queue[T]) process(job Job[T]) {
	if err := q.handler(q.ctx, job); err != nil {
		q.handleFailure(job, err)
		return
	}
	q.processed.Add(1)
}

func (q *Queue[T]) handleFailure(job Job[T], err error) {
	job.Attempt++
	if job.Attempt > q.cfg.MaxRetries {
		q.failed.Add(1)
		q.logger.Error("job exceeded retries", zap.String("job_id", job.ID), zap.Int("attempts", job.Attempt), zap.Error(err))
		return
	}
	q.retried.Add(1)

	q.mu.RLock()
	running := q.running
	if running {
		q.retries.Add(1)
	}
	q.mu.RUnlock()
	if !running {
		// draining: retry inline so the job survives shutdown
		q.process(job)
		return
	}

	q.logger.Warn("job failed, retrying", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
	go func(j Job[T]) {
		defer q.retries.Done()
		timer := time.NewTimer(time.Duration(j.Attempt) * q.cfg.RetryDelay)
		defer timer.Stop()
		select {
		case <-q.retryStop:
			q.process(j)
		case <-timer.C:
			if err := q.TryEnqueue(j); err != nil {
				q.process(j)
			}
		}
	}(job)
}
