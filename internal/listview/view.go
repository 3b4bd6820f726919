package listview

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tawhid3482/geniustutors-console/internal/collection"
	"github.com/tawhid3482/geniustutors-console/internal/filter"
	"github.com/tawhid3482/geniustutors-console/pkg/debounce"
	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
	"github.com/tawhid3482/geniustutors-console/pkg/pagination"
)

// SearchInput describes the raw search box while the debouncer is pending.
type SearchInput struct {
	Value  string `json:"value"`
	Typing bool   `json:"typing"`
}

// ViewModel is everything a list screen renders.
type ViewModel[T any] struct {
	VisibleRows  []T              `json:"visible_rows"`
	PageInfo     pagination.Page  `json:"page_info"`
	MatchedCount int              `json:"matched_count"`
	IsLoading    bool             `json:"is_loading"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Filter       filter.State     `json:"filter"`
	SearchInput  SearchInput      `json:"search_input"`
	Selection    []string         `json:"selection"`
	State        collection.State `json:"state"`
	LoadedAt     time.Time        `json:"loaded_at,omitempty"`
}

// Option configures a View.
type Option func(*config)

type config struct {
	schema     filter.Schema
	pageSize   int
	window     time.Duration
	schedOpts  []debounce.Option
	now        func() time.Time
	logger     *zap.Logger
	filterKeys map[string]struct{}
}

// WithSchema sets the per-key match policy.
func WithSchema(s filter.Schema) Option {
	return func(c *config) { c.schema = s }
}

// WithPageSize sets the initial page size.
func WithPageSize(size int) Option {
	return func(c *config) { c.pageSize = size }
}

// WithDebounce sets the search quiet period.
func WithDebounce(window time.Duration, opts ...debounce.Option) Option {
	return func(c *config) {
		c.window = window
		c.schedOpts = append(c.schedOpts, opts...)
	}
}

// WithClock overrides the clock used by date buckets.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFilterKeys restricts SetCategory to the given keys.
func WithFilterKeys(keys ...string) Option {
	return func(c *config) {
		c.filterKeys = make(map[string]struct{}, len(keys))
		for _, k := range keys {
			c.filterKeys[k] = struct{}{}
		}
	}
}

// View composes a fetched collection with its filter, pagination, debounced
// search and row selection. Rows are derived on every Model call so they
// always reflect the latest applied fetch.
type View[T filter.Record] struct {
	ctrl   *collection.Controller[T]
	cfg    config
	search *debounce.Debouncer

	mu        sync.Mutex
	filter    filter.State
	page      pagination.State
	selection []string
	closed    bool
}

// New wraps ctrl in a View.
func New[T filter.Record](ctrl *collection.Controller[T], opts ...Option) *View[T] {
	cfg := config{now: time.Now, logger: zap.NewNop(), window: debounce.DefaultWindow}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	v := &View[T]{
		ctrl:   ctrl,
		cfg:    cfg,
		filter: filter.State{DateRange: filter.DateRange{Bucket: filter.BucketAll}},
		page:   pagination.NewState(cfg.pageSize),
	}
	v.search = debounce.New(cfg.window, v.commitSearch, cfg.schedOpts...)
	return v
}

// Controller exposes the underlying collection controller.
func (v *View[T]) Controller() *collection.Controller[T] {
	return v.ctrl
}

// Load performs the initial fetch.
func (v *View[T]) Load(ctx context.Context) (ViewModel[T], error) {
	_, err := v.ctrl.Load(ctx)
	return v.Model(), err
}

// Refresh re-fetches on demand.
func (v *View[T]) Refresh(ctx context.Context) (ViewModel[T], error) {
	_, err := v.ctrl.Refresh(ctx)
	return v.Model(), err
}

// InvalidateAndReload re-fetches after a mutation.
func (v *View[T]) InvalidateAndReload(ctx context.Context) error {
	_, err := v.ctrl.InvalidateAndReload(ctx)
	return err
}

// Type feeds one keystroke snapshot to the debounced search box.
func (v *View[T]) Type(value string) {
	v.search.Push(value)
}

// CommitSearch applies any pending input immediately.
func (v *View[T]) CommitSearch() {
	v.search.Flush()
}

// SetSearch bypasses the debouncer and applies value now.
func (v *View[T]) SetSearch(value string) {
	v.search.Flush()
	v.commitSearch(value)
}

func (v *View[T]) commitSearch(value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.filter.Search = strings.TrimSpace(value)
	v.page.Reset()
}

// SetCategory sets a categorical filter and returns to page one.
func (v *View[T]) SetCategory(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return appErrors.Clone(appErrors.ErrValidation, "filter key is required")
	}
	if v.cfg.filterKeys != nil {
		if _, ok := v.cfg.filterKeys[key]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, "unknown filter "+key)
		}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.Set(key, value)
	v.page.Reset()
	return nil
}

// SetDateRange sets the creation-date filter and returns to page one.
func (v *View[T]) SetDateRange(r filter.DateRange) error {
	if r.Bucket == "" {
		r.Bucket = filter.BucketAll
	}
	if _, ok := filter.ParseBucket(string(r.Bucket)); !ok {
		return appErrors.Clone(appErrors.ErrValidation, "unknown date range "+string(r.Bucket))
	}
	if r.Bucket == filter.BucketCustom && !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return appErrors.Clone(appErrors.ErrValidation, "date range end is before start")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.DateRange = r
	v.page.Reset()
	return nil
}

// ClearFilters drops every filter including search.
func (v *View[T]) ClearFilters() {
	v.search.Flush()
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = filter.State{DateRange: filter.DateRange{Bucket: filter.BucketAll}}
	v.page.Reset()
}

// SetPage moves to page n. Out-of-range pages are clamped on the next Model.
func (v *View[T]) SetPage(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page.Page = n
}

// SetPageSize changes the page size and returns to page one.
func (v *View[T]) SetPageSize(size int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page.SetPageSize(size)
}

// Select marks row ids as selected. Unknown ids are kept until the next Model prunes them.
func (v *View[T]) Select(ids ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, id := range ids {
		if !containsString(v.selection, id) {
			v.selection = append(v.selection, id)
		}
	}
}

// Deselect removes row ids from the selection.
func (v *View[T]) Deselect(ids ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.selection[:0]
	for _, id := range v.selection {
		if !containsString(ids, id) {
			out = append(out, id)
		}
	}
	v.selection = out
}

// Filter returns a copy of the committed filter state.
func (v *View[T]) Filter() filter.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter.Clone()
}

// Find returns the row with id from the latest applied fetch.
func (v *View[T]) Find(id string) (T, bool) {
	for _, item := range v.ctrl.Snapshot().Items {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Matched returns every row passing the filter across all pages.
func (v *View[T]) Matched() []T {
	snap := v.ctrl.Snapshot()
	v.mu.Lock()
	state := v.filter.Clone()
	v.mu.Unlock()
	return filter.Apply(snap.Items, state, v.cfg.schema, v.cfg.now())
}

// Model derives the current view model.
func (v *View[T]) Model() ViewModel[T] {
	snap := v.ctrl.Snapshot()
	pendingValue, typing := v.search.Pending()

	v.mu.Lock()
	defer v.mu.Unlock()

	rows := filter.Apply(snap.Items, v.filter, v.cfg.schema, v.cfg.now())
	page := v.page.Apply(len(rows))
	lo, hi := page.Bounds()
	visible := append([]T(nil), rows[lo:hi]...)

	v.selection = pruneSelection(v.selection, snap.Items)

	return ViewModel[T]{
		VisibleRows:  visible,
		PageInfo:     page,
		MatchedCount: len(rows),
		IsLoading:    snap.IsLoading(),
		ErrorMessage: snap.ErrorMessage(),
		Filter:       v.filter.Clone(),
		SearchInput:  SearchInput{Value: pendingValue, Typing: typing},
		Selection:    append([]string{}, v.selection...),
		State:        snap.State,
		LoadedAt:     snap.LoadedAt,
	}
}

// Close stops the debouncer and the controller. Pending keystrokes are dropped.
func (v *View[T]) Close() {
	v.search.Stop()
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.ctrl.Close()
	v.cfg.logger.Debug("list view closed", zap.String("collection", v.ctrl.Name()))
}

func pruneSelection[T filter.Record](selected []string, items []T) []string {
	if len(selected) == 0 {
		return selected
	}
	present := make(map[string]struct{}, len(items))
	for _, item := range items {
		present[item.RecordID()] = struct{}{}
	}
	out := selected[:0]
	for _, id := range selected {
		if _, ok := present[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
