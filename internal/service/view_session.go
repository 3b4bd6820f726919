package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tawhid3482/geniustutors-console/internal/backend"
	"github.com/tawhid3482/geniustutors-console/internal/collection"
	"github.com/tawhid3482/geniustutors-console/internal/editor"
	"github.com/tawhid3482/geniustutors-console/internal/filter"
	"github.com/tawhid3482/geniustutors-console/internal/listview"
	"github.com/tawhid3482/geniustutors-console/internal/models"
	"github.com/tawhid3482/geniustutors-console/pkg/export"
	"github.com/tawhid3482/geniustutors-console/pkg/pagination"
)

// ViewState is the rendered state of one open list view.
type ViewState struct {
	ID           string               `json:"id"`
	Kind         models.EntityKind    `json:"kind"`
	Rows         any                  `json:"rows"`
	Page         pagination.Page      `json:"page"`
	MatchedCount int                  `json:"matched_count"`
	IsLoading    bool                 `json:"is_loading"`
	ErrorMessage string               `json:"error_message,omitempty"`
	Filter       filter.State         `json:"filter"`
	SearchInput  listview.SearchInput `json:"search_input"`
	Selection    []string             `json:"selection"`
	State        collection.State     `json:"state"`
	LoadedAt     time.Time            `json:"loaded_at"`
}

// listSession is the kind-independent surface of a typed list view.
type listSession interface {
	Type(value string)
	CommitSearch()
	SetSearch(value string)
	SetCategory(key, value string) error
	SetDateRange(r filter.DateRange) error
	ClearFilters()
	SetPage(n int)
	SetPageSize(size int)
	Select(ids ...string)
	Deselect(ids ...string)
	InvalidateAndReload(ctx context.Context) error
	Close()

	Fetch(ctx context.Context, initial bool) error
	State() ViewState
	Record(id string) (editor.Fields, bool)
	Table(title string, at time.Time) export.Table
	StartPolling(interval time.Duration) error
	Mutator() editor.Mutator
}

type kindView[T models.Entity] struct {
	*listview.View[T]
	kind     models.EntityKind
	resource *backend.Resource[T]
}

func (k *kindView[T]) Fetch(ctx context.Context, initial bool) error {
	if initial {
		_, err := k.Load(ctx)
		return err
	}
	_, err := k.Refresh(ctx)
	return err
}

func (k *kindView[T]) State() ViewState {
	m := k.Model()
	return ViewState{
		Kind:         k.kind,
		Rows:         m.VisibleRows,
		Page:         m.PageInfo,
		MatchedCount: m.MatchedCount,
		IsLoading:    m.IsLoading,
		ErrorMessage: m.ErrorMessage,
		Filter:       m.Filter,
		SearchInput:  m.SearchInput,
		Selection:    m.Selection,
		State:        m.State,
		LoadedAt:     m.LoadedAt,
	}
}

func (k *kindView[T]) Record(id string) (editor.Fields, bool) {
	row, ok := k.Find(id)
	if !ok {
		return nil, false
	}
	return editor.Fields(row.Fields()), true
}

// Table renders every row matching the current filter, across all pages.
func (k *kindView[T]) Table(title string, at time.Time) export.Table {
	rows := k.Matched()
	var zero T
	headers, _ := zero.Columns()
	t := export.Table{Title: title, Headers: headers, GeneratedAt: at}
	for _, row := range rows {
		_, values := row.Columns()
		t.Append(values)
	}
	return t
}

func (k *kindView[T]) StartPolling(interval time.Duration) error {
	return k.Controller().StartPolling(interval)
}

func (k *kindView[T]) Mutator() editor.Mutator {
	return k.resource
}

type viewOptions struct {
	client   *backend.Client
	observer collection.Observer
	ticker   collection.Ticker
	logger   *zap.Logger
	pageSize int
	debounce time.Duration
}

func newKindView[T models.Entity](kind models.EntityKind, o viewOptions) *kindView[T] {
	resource := backend.NewResource[T](o.client, kind.Path())
	ctrl := collection.New[T](string(kind), resource,
		collection.WithLogger[T](o.logger),
		collection.WithObserver[T](o.observer),
		collection.WithTicker[T](o.ticker),
	)
	view := listview.New(ctrl,
		listview.WithSchema(kind.FilterSchema()),
		listview.WithFilterKeys(kind.FilterKeys()...),
		listview.WithPageSize(o.pageSize),
		listview.WithDebounce(o.debounce),
		listview.WithLogger(o.logger),
	)
	return &kindView[T]{View: view, kind: kind, resource: resource}
}

func newListSession(kind models.EntityKind, o viewOptions) listSession {
	switch kind {
	case models.KindTutor:
		return newKindView[models.Tutor](kind, o)
	case models.KindTuitionRequest:
		return newKindView[models.TuitionRequest](kind, o)
	case models.KindDemoClass:
		return newKindView[models.DemoClass](kind, o)
	case models.KindAppointmentLetter:
		return newKindView[models.AppointmentLetter](kind, o)
	case models.KindNotice:
		return newKindView[models.Notice](kind, o)
	}
	return nil
}

// ViewSession is one admin's open list view with its edit surfaces.
type ViewSession struct {
	ID      string
	OwnerID string
	Kind    models.EntityKind
	Created time.Time

	list    listSession
	editors *editor.Registry
	actor   Actor

	mu       sync.Mutex
	lastUsed time.Time
}

func (v *ViewSession) touch(at time.Time) {
	v.mu.Lock()
	v.lastUsed = at
	v.mu.Unlock()
}

func (v *ViewSession) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUsed
}

func (v *ViewSession) state() ViewState {
	st := v.list.State()
	st.ID = v.ID
	return st
}
