package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Ticker runs periodic callbacks on a shared cron engine.
type Ticker struct {
	engine *cron.Cron
	logger *zap.Logger

	mu      sync.Mutex
	started bool
}

// NewTicker builds a Ticker. Overlapping runs of the same entry are skipped.
func NewTicker(logger *zap.Logger) *Ticker {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{l: logger.Sugar()}
	return &Ticker{
		engine: cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger: logger,
	}
}

// Start begins dispatching entries. Safe to call more than once.
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return
	}
	t.engine.Start()
	t.started = true
	t.logger.Info("ticker started")
}

// Stop halts dispatch and waits for running callbacks until ctx expires.
func (t *Ticker) Stop(ctx context.Context) {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return
	}
	t.started = false
	t.mu.Unlock()

	done := t.engine.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		t.logger.Warn("ticker stop timed out", zap.Error(ctx.Err()))
	}
}

// Every registers fn to run at the given interval. The returned stop func removes
// the entry and is idempotent. Intervals below one second are rounded up by cron.
func (t *Ticker) Every(interval time.Duration, fn func()) (func(), error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid interval %s", interval)
	}
	if fn == nil {
		return nil, fmt.Errorf("nil callback")
	}
	id := t.engine.Schedule(cron.Every(interval), cron.FuncJob(fn))
	var once sync.Once
	return func() {
		once.Do(func() { t.engine.Remove(id) })
	}, nil
}

// Entries returns the number of registered callbacks.
func (t *Ticker) Entries() int {
	return len(t.engine.Entries())
}

type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
