package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
)

// State is the lifecycle of a fetched collection.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

// Fetcher returns the authoritative list from the backend.
type Fetcher[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// FetchFunc adapts a plain function to Fetcher.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// List implements Fetcher.
func (f FetchFunc[T]) List(ctx context.Context) ([]T, error) {
	return f(ctx)
}

// Ticker schedules periodic callbacks and returns a cancel func.
type Ticker interface {
	Every(interval time.Duration, fn func()) (func(), error)
}

// Observer receives lifecycle signals, typically for metrics.
type Observer interface {
	ObserveStaleResponse(collection string)
	ObserveRefresh(collection string, trigger string, err error)
}

// Snapshot is an immutable copy of the controller state.
type Snapshot[T any] struct {
	Items      []T
	State      State
	Err        error
	Generation uint64
	LoadedAt   time.Time
}

// IsLoading reports whether a request is outstanding.
func (s Snapshot[T]) IsLoading() bool {
	return s.State == StateLoading
}

// ErrorMessage is the user-facing text for the last failure.
func (s Snapshot[T]) ErrorMessage() string {
	return appErrors.UserMessage(s.Err)
}

// Option configures a Controller.
type Option[T any] func(*Controller[T])

// WithLogger sets the logger.
func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(c *Controller[T]) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver attaches an Observer.
func WithObserver[T any](o Observer) Option[T] {
	return func(c *Controller[T]) {
		c.observer = o
	}
}

// WithTicker enables StartPolling.
func WithTicker[T any](t Ticker) Option[T] {
	return func(c *Controller[T]) {
		c.ticker = t
	}
}

// WithClock overrides time.Now.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Controller[T]) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller owns one fetched collection. Every request is tagged with a
// generation and only the newest issued generation may apply its result.
type Controller[T any] struct {
	name     string
	fetcher  Fetcher[T]
	logger   *zap.Logger
	observer Observer
	ticker   Ticker
	now      func() time.Time

	mu       sync.Mutex
	items    []T
	state    State
	err      error
	issued   uint64
	applied  uint64
	loadedAt time.Time
	stopPoll func()
	closed   bool
}

// New builds a Controller in the idle state.
func New[T any](name string, fetcher Fetcher[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		name:    name,
		fetcher: fetcher,
		logger:  zap.NewNop(),
		now:     time.Now,
		state:   StateIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Name identifies the collection in logs and metrics.
func (c *Controller[T]) Name() string {
	return c.name
}

// Load fetches the list. A failure keeps the previously loaded items.
func (c *Controller[T]) Load(ctx context.Context) (Snapshot[T], error) {
	return c.fetch(ctx, "load")
}

// Refresh is Load invoked on an already populated collection.
func (c *Controller[T]) Refresh(ctx context.Context) (Snapshot[T], error) {
	return c.fetch(ctx, "refresh")
}

// InvalidateAndReload is the read-after-write contract: after any successful
// mutation the whole list is re-fetched instead of patching local items.
func (c *Controller[T]) InvalidateAndReload(ctx context.Context) (Snapshot[T], error) {
	return c.fetch(ctx, "mutation")
}

func (c *Controller[T]) fetch(ctx context.Context, trigger string) (Snapshot[T], error) {
	c.mu.Lock()
	if c.closed {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, appErrors.ErrSessionClosed
	}
	c.issued++
	gen := c.issued
	c.state = StateLoading
	c.mu.Unlock()

	items, err := c.fetcher.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return c.snapshotLocked(), appErrors.ErrSessionClosed
	}
	if gen != c.issued {
		c.logger.Debug("discarding stale response",
			zap.String("collection", c.name),
			zap.Uint64("generation", gen),
			zap.Uint64("latest", c.issued))
		if c.observer != nil {
			c.observer.ObserveStaleResponse(c.name)
		}
		return c.snapshotLocked(), nil
	}

	if c.observer != nil {
		c.observer.ObserveRefresh(c.name, trigger, err)
	}
	if err != nil {
		c.state = StateFailed
		c.err = normalise(err)
		c.logger.Warn("collection fetch failed",
			zap.String("collection", c.name),
			zap.String("trigger", trigger),
			zap.Error(err))
		return c.snapshotLocked(), c.err
	}

	c.items = append([]T(nil), items...)
	c.state = StateLoaded
	c.err = nil
	c.applied = gen
	c.loadedAt = c.now()
	return c.snapshotLocked(), nil
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Items:      append([]T(nil), c.items...),
		State:      c.state,
		Err:        c.err,
		Generation: c.applied,
		LoadedAt:   c.loadedAt,
	}
}

// StartPolling refreshes unconditionally every interval until Close.
func (c *Controller[T]) StartPolling(interval time.Duration) error {
	if c.ticker == nil {
		return fmt.Errorf("collection %s: polling requires a ticker", c.name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return appErrors.ErrSessionClosed
	}
	if c.stopPoll != nil {
		return nil
	}
	stop, err := c.ticker.Every(interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if _, err := c.fetch(ctx, "poll"); err != nil && !errors.Is(err, appErrors.ErrSessionClosed) {
			c.logger.Debug("poll refresh failed", zap.String("collection", c.name), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("collection %s: start polling: %w", c.name, err)
	}
	c.stopPoll = stop
	return nil
}

// Close cancels polling. Responses arriving afterwards are dropped.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	stop := c.stopPoll
	c.stopPoll = nil
	c.closed = true
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func normalise(err error) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "backend did not respond in time")
	}
	return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, appErrors.ErrBackendUnavailable.Message)
}
