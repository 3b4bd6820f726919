package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{at: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

type recorder struct {
	mu     sync.Mutex
	values []string
}

func (r *recorder) commit(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func TestDebouncerCommitsOnlyFinalValue(t *testing.T) {
	clock := &fakeScheduler{}
	rec := &recorder{}
	d := New(300*time.Millisecond, rec.commit, WithScheduler(clock))

	d.Push("d")
	clock.Advance(100 * time.Millisecond)
	d.Push("da")
	clock.Advance(100 * time.Millisecond)
	d.Push("dha")

	clock.Advance(299 * time.Millisecond)
	assert.Empty(t, rec.got())
	pending, typing := d.Pending()
	assert.True(t, typing)
	assert.Equal(t, "dha", pending)

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"dha"}, rec.got())

	clock.Advance(time.Second)
	assert.Equal(t, []string{"dha"}, rec.got())
	_, typing = d.Pending()
	assert.False(t, typing)
}

func TestDebouncerStopCancelsPendingCommit(t *testing.T) {
	clock := &fakeScheduler{}
	rec := &recorder{}
	d := New(300*time.Millisecond, rec.commit, WithScheduler(clock))

	d.Push("dhaka")
	d.Stop()
	clock.Advance(time.Second)
	assert.Empty(t, rec.got())

	d.Push("again")
	clock.Advance(time.Second)
	assert.Empty(t, rec.got())
}

func TestDebouncerIgnoresTimerThatRacedStop(t *testing.T) {
	clock := &fakeScheduler{}
	rec := &recorder{}
	d := New(300*time.Millisecond, rec.commit, WithScheduler(clock))

	d.Push("x")
	require.Len(t, clock.timers, 1)
	cb := clock.timers[0].fn
	d.Stop()
	cb()
	assert.Empty(t, rec.got())
}

func TestDebouncerFlushCommitsImmediately(t *testing.T) {
	clock := &fakeScheduler{}
	rec := &recorder{}
	d := New(0, rec.commit, WithScheduler(clock))
	assert.Equal(t, DefaultWindow, d.Window())

	d.Flush()
	assert.Empty(t, rec.got())

	d.Push("math")
	d.Flush()
	clock.Advance(time.Second)
	assert.Equal(t, []string{"math"}, rec.got())
}

func TestDebouncerWithRealTimers(t *testing.T) {
	rec := &recorder{}
	d := New(20*time.Millisecond, rec.commit)
	defer d.Stop()

	d.Push("p")
	d.Push("ph")
	d.Push("phy")

	require.Eventually(t, func() bool { return len(rec.got()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"phy"}, rec.got())
}
