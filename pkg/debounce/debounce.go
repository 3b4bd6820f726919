package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiet period used when none is configured.
const DefaultWindow = 300 * time.Millisecond

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler schedules fn after d. The default uses time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Option customises a Debouncer.
type Option func(*Debouncer)

// WithScheduler overrides the timer source.
func WithScheduler(s Scheduler) Option {
	return func(d *Debouncer) {
		if s != nil {
			d.scheduler = s
		}
	}
}

// Debouncer commits the last pushed value once no push has happened for the window.
type Debouncer struct {
	window    time.Duration
	commit    func(string)
	scheduler Scheduler

	mu         sync.Mutex
	timer      Timer
	pending    string
	typing     bool
	generation uint64
	stopped    bool
}

// New builds a Debouncer calling commit with each settled value.
func New(window time.Duration, commit func(string), opts ...Option) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	d := &Debouncer{window: window, commit: commit, scheduler: realScheduler{}}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Window returns the configured quiet period.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Push records raw input and restarts the quiet period.
func (d *Debouncer) Push(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = value
	d.typing = true
	d.generation++
	gen := d.generation
	d.timer = d.scheduler.AfterFunc(d.window, func() { d.fire(gen) })
}

// Flush commits any pending value immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || !d.typing {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
	value := d.settle()
	d.mu.Unlock()
	d.commit(value)
}

// Pending returns the uncommitted value while typing.
func (d *Debouncer) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending, d.typing
}

// Stop cancels any pending commit. A stopped debouncer ignores further pushes.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.typing = false
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// a later push, flush or stop superseded this timer
	if d.stopped || gen != d.generation || !d.typing {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	value := d.settle()
	d.mu.Unlock()
	d.commit(value)
}

func (d *Debouncer) settle() string {
	d.typing = false
	value := d.pending
	d.pending = ""
	return value
}
