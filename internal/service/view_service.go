package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tawhid3482/geniustutors-console/internal/backend"
	"github.com/tawhid3482/geniustutors-console/internal/collection"
	"github.com/tawhid3482/geniustutors-console/internal/dto"
	"github.com/tawhid3482/geniustutors-console/internal/editor"
	"github.com/tawhid3482/geniustutors-console/internal/filter"
	"github.com/tawhid3482/geniustutors-console/internal/models"
	"github.com/tawhid3482/geniustutors-console/internal/selection"
	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
	"github.com/tawhid3482/geniustutors-console/pkg/export"
)

// ViewConfig tunes list view sessions.
type ViewConfig struct {
	SearchDebounce  time.Duration
	DefaultPageSize int
	PollInterval    time.Duration
	IdleTTL         time.Duration
	ReapInterval    time.Duration
}

type appliedRecorder interface {
	RecordApplied(actor Actor, kind models.EntityKind, applied editor.Applied)
}

// ViewService owns the list view sessions opened by console operators.
type ViewService struct {
	client    *backend.Client
	taxonomy  *TaxonomyService
	menu      *MenuService
	audit     appliedRecorder
	metrics   *MetricsService
	ticker    collection.Ticker
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ViewConfig
	now       func() time.Time

	mu         sync.Mutex
	sessions   map[string]*ViewSession
	stopReaper func()
}

// NewViewService constructs a ViewService. ticker drives polling and the idle
// reaper and may be nil, which disables both.
func NewViewService(client *backend.Client, taxonomy *TaxonomyService, menu *MenuService, audit appliedRecorder, metrics *MetricsService, ticker collection.Ticker, validate *validator.Validate, logger *zap.Logger, cfg ViewConfig) *ViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if menu == nil {
		menu = NewMenuService(nil)
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = time.Minute
	}
	return &ViewService{
		client:    client,
		taxonomy:  taxonomy,
		menu:      menu,
		audit:     audit,
		metrics:   metrics,
		ticker:    ticker,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		sessions:  make(map[string]*ViewSession),
	}
}

// Start schedules the idle reaper.
func (s *ViewService) Start() error {
	if s.ticker == nil {
		return nil
	}
	stop, err := s.ticker.Every(s.cfg.ReapInterval, s.Reap)
	if err != nil {
		return fmt.Errorf("schedule view reaper: %w", err)
	}
	s.mu.Lock()
	s.stopReaper = stop
	s.mu.Unlock()
	return nil
}

// Stop cancels the reaper and closes every session.
func (s *ViewService) Stop() {
	s.mu.Lock()
	stop := s.stopReaper
	s.stopReaper = nil
	sessions := s.sessions
	s.sessions = make(map[string]*ViewSession)
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	for _, v := range sessions {
		s.teardown(v, "shutdown")
	}
}

// Reap closes sessions idle for longer than the configured TTL.
func (s *ViewService) Reap() {
	cutoff := s.now().Add(-s.cfg.IdleTTL)
	var expired []*ViewSession
	s.mu.Lock()
	for id, v := range s.sessions {
		if v.idleSince().Before(cutoff) {
			expired = append(expired, v)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
	for _, v := range expired {
		s.teardown(v, "idle")
	}
}

// Len returns the number of open sessions.
func (s *ViewService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Create opens a view over req.Kind, applies the initial query and loads it.
// A failed load still opens the view; the failure shows in its state.
func (s *ViewService) Create(ctx context.Context, actor Actor, role models.UserRole, req dto.CreateViewRequest) (ViewState, error) {
	if err := s.validator.Struct(req); err != nil {
		return ViewState{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid view payload")
	}
	kind, ok := models.ParseEntityKind(req.Kind)
	if !ok {
		return ViewState{}, appErrors.Clone(appErrors.ErrValidation, "unknown entity kind "+req.Kind)
	}
	if !s.menu.Allows(role, kind) {
		return ViewState{}, appErrors.Clone(appErrors.ErrForbidden, "role cannot open "+string(kind))
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = s.cfg.DefaultPageSize
	}
	list := newListSession(kind, viewOptions{
		client:   s.client,
		observer: s.metrics,
		ticker:   s.ticker,
		logger:   s.logger,
		pageSize: pageSize,
		debounce: s.cfg.SearchDebounce,
	})

	if err := applyFilters(list, req.Filters, req.DateRange); err != nil {
		list.Close()
		return ViewState{}, err
	}
	if req.Search != "" {
		list.SetSearch(req.Search)
	}

	now := s.now()
	v := &ViewSession{
		ID:       uuid.NewString(),
		OwnerID:  actor.UserID,
		Kind:     kind,
		Created:  now,
		list:     list,
		actor:    actor,
		lastUsed: now,
	}
	v.editors = editor.NewRegistry(s.editorDeps(v))

	if err := list.Fetch(ctx, true); err != nil {
		s.logger.Warn("initial view load failed", zap.String("view_id", v.ID), zap.String("kind", string(kind)), zap.Error(err))
	}
	if s.cfg.PollInterval > 0 && s.ticker != nil {
		if err := list.StartPolling(s.cfg.PollInterval); err != nil {
			s.logger.Warn("view polling not started", zap.String("view_id", v.ID), zap.Error(err))
		}
	}

	s.mu.Lock()
	s.sessions[v.ID] = v
	s.mu.Unlock()
	s.metrics.ViewOpened()
	s.logger.Info("view opened", zap.String("view_id", v.ID), zap.String("kind", string(kind)), zap.String("owner", actor.UserID))
	return v.state(), nil
}

// Get returns the current state of a view.
func (s *ViewService) Get(owner, id string) (ViewState, error) {
	v, err := s.session(owner, id)
	if err != nil {
		return ViewState{}, err
	}
	return v.state(), nil
}

// Query changes the search, filters, page or selection of a view.
func (s *ViewService) Query(owner, id string, req dto.ViewQueryRequest) (ViewState, error) {
	if err := s.validator.Struct(req); err != nil {
		return ViewState{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query payload")
	}
	v, err := s.session(owner, id)
	if err != nil {
		return ViewState{}, err
	}
	list := v.list
	if req.ClearFilters {
		list.ClearFilters()
	}
	if err := applyFilters(list, req.Filters, req.DateRange); err != nil {
		return ViewState{}, err
	}
	if req.Search != nil {
		list.SetSearch(*req.Search)
	}
	if req.PageSize != nil {
		list.SetPageSize(*req.PageSize)
	}
	if req.Page != nil {
		list.SetPage(*req.Page)
	}
	if len(req.Select) > 0 {
		list.Select(req.Select...)
	}
	if len(req.Deselect) > 0 {
		list.Deselect(req.Deselect...)
	}
	return v.state(), nil
}

// Keystroke feeds the debounced search box; commit applies it at once.
func (s *ViewService) Keystroke(owner, id string, req dto.KeystrokeRequest) (ViewState, error) {
	if err := s.validator.Struct(req); err != nil {
		return ViewState{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid keystroke payload")
	}
	v, err := s.session(owner, id)
	if err != nil {
		return ViewState{}, err
	}
	v.list.Type(req.Value)
	if req.Commit {
		v.list.CommitSearch()
	}
	return v.state(), nil
}

// Refresh re-fetches the collection. Backend failures are reported in the state.
func (s *ViewService) Refresh(ctx context.Context, owner, id string) (ViewState, error) {
	v, err := s.session(owner, id)
	if err != nil {
		return ViewState{}, err
	}
	if err := v.list.Fetch(ctx, false); err != nil {
		if errors.Is(err, appErrors.ErrSessionClosed) {
			return ViewState{}, err
		}
		s.logger.Debug("view refresh failed", zap.String("view_id", id), zap.Error(err))
	}
	return v.state(), nil
}

// Close tears the view down.
func (s *ViewService) Close(owner, id string) error {
	v, err := s.session(owner, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.teardown(v, "closed")
	return nil
}

// OpenEdit opens, or returns the open, edit surface for row eid.
func (s *ViewService) OpenEdit(ctx context.Context, owner, id, eid string) (editor.View, error) {
	v, err := s.session(owner, id)
	if err != nil {
		return editor.View{}, err
	}
	fields, ok := v.list.Record(eid)
	if !ok {
		return editor.View{}, appErrors.Clone(appErrors.ErrNotFound, "row "+eid+" is not in this view")
	}
	session := v.editors.OpenEdit(eid, fields)
	if v.Kind == models.KindTutor && s.taxonomy != nil {
		if _, attached := session.Tags(GroupCategories); !attached {
			cascades, err := s.taxonomy.Cascades(ctx, fields)
			if err != nil {
				s.logger.Warn("tag editors unavailable", zap.String("entity_id", eid), zap.Error(err))
			} else {
				session.AttachTags(cascades...)
			}
		}
	}
	if err := session.Begin(); err != nil {
		return session.View(), err
	}
	return session.View(), nil
}

// ProposeEdit records proposed values on an open edit surface.
func (s *ViewService) ProposeEdit(owner, id, eid string, req dto.ProposeChangesRequest) (editor.View, error) {
	if err := s.validator.Struct(req); err != nil {
		return editor.View{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid changes payload")
	}
	session, err := s.edit(owner, id, eid)
	if err != nil {
		return editor.View{}, err
	}
	changes := editor.Fields{}
	for k, val := range req.Changes {
		if list, ok := val.([]any); ok {
			val = StringList(list)
		}
		changes[k] = val
	}
	if err := session.ProposeAll(changes); err != nil {
		return session.View(), err
	}
	return session.View(), nil
}

// SubmitEdit sends every proposed change in one backend call. A successful
// submit closes the surface.
func (s *ViewService) SubmitEdit(ctx context.Context, owner, id, eid string) (editor.View, error) {
	v, err := s.session(owner, id)
	if err != nil {
		return editor.View{}, err
	}
	session, err := v.editors.Edit(eid)
	if err != nil {
		return editor.View{}, err
	}
	if err := session.Submit(ctx); err != nil {
		return session.View(), err
	}
	v.editors.CloseEdit(eid)
	return session.View(), nil
}

// CloseEdit discards an edit surface.
func (s *ViewService) CloseEdit(owner, id, eid string) error {
	v, err := s.session(owner, id)
	if err != nil {
		return err
	}
	if !v.editors.CloseEdit(eid) {
		return appErrors.Clone(appErrors.ErrNotFound, "no edit open for "+eid)
	}
	return nil
}

// EditTags applies one tag operation to group on an edit surface.
func (s *ViewService) EditTags(owner, id, eid, group string, req dto.TagRequest) (editor.View, error) {
	if err := s.validator.Struct(req); err != nil {
		return editor.View{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tag payload")
	}
	session, err := s.edit(owner, id, eid)
	if err != nil {
		return editor.View{}, err
	}
	err = session.EditTags(group, func(c *selection.Cascade) error {
		switch req.Op {
		case dto.TagAdd:
			return c.Add(group, req.Value)
		case dto.TagAddCustom:
			return c.AddCustom(group, req.Value)
		case dto.TagRemove:
			c.Remove(group, req.Value)
			return nil
		}
		return appErrors.Clone(appErrors.ErrValidation, "unknown tag operation "+string(req.Op))
	})
	return session.View(), err
}

// TagOptions lists the selectable values of group narrowed by query.
func (s *ViewService) TagOptions(owner, id, eid, group, query string) ([]string, error) {
	session, err := s.edit(owner, id, eid)
	if err != nil {
		return nil, err
	}
	return session.TagOptions(group, query)
}

// RequestDelete opens a deletion surface for row eid awaiting confirmation.
func (s *ViewService) RequestDelete(owner, id, eid string) (editor.DeleteView, error) {
	v, err := s.session(owner, id)
	if err != nil {
		return editor.DeleteView{}, err
	}
	fields, ok := v.list.Record(eid)
	if !ok {
		return editor.DeleteView{}, appErrors.Clone(appErrors.ErrNotFound, "row "+eid+" is not in this view")
	}
	d := v.editors.OpenDelete(eid, fields)
	if err := d.Request(); err != nil {
		return d.View(), err
	}
	return d.View(), nil
}

// ConfirmDelete fires the pending deletion and closes the surface on success.
func (s *ViewService) ConfirmDelete(ctx context.Context, owner, id, eid string) (editor.DeleteView, error) {
	v, err := s.session(owner, id)
	if err != nil {
		return editor.DeleteView{}, err
	}
	d, err := v.editors.Delete(eid)
	if err != nil {
		return editor.DeleteView{}, err
	}
	if err := d.Confirm(ctx); err != nil {
		return d.View(), err
	}
	v.editors.CloseDelete(eid)
	return d.View(), nil
}

// CancelDelete withdraws a pending deletion.
func (s *ViewService) CancelDelete(owner, id, eid string) error {
	v, err := s.session(owner, id)
	if err != nil {
		return err
	}
	d, err := v.editors.Delete(eid)
	if err != nil {
		return err
	}
	d.Cancel()
	v.editors.CloseDelete(eid)
	return nil
}

// Export renders every row matching the view's filter.
func (s *ViewService) Export(owner, id string) (export.Table, models.EntityKind, error) {
	v, err := s.session(owner, id)
	if err != nil {
		return export.Table{}, "", err
	}
	return v.list.Table(kindTitle(v.Kind), s.now().UTC()), v.Kind, nil
}

// Sessions lists the ids of views owned by owner, newest first.
func (s *ViewService) Sessions(owner string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var owned []*ViewSession
	for _, v := range s.sessions {
		if v.OwnerID == owner {
			owned = append(owned, v)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].Created.After(owned[j].Created) })
	out := make([]string, 0, len(owned))
	for _, v := range owned {
		out = append(out, v.ID)
	}
	return out
}

func (s *ViewService) session(owner, id string) (*ViewSession, error) {
	s.mu.Lock()
	v, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok || v.OwnerID != owner {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "view not found")
	}
	v.touch(s.now())
	return v, nil
}

func (s *ViewService) edit(owner, id, eid string) (*editor.Session, error) {
	v, err := s.session(owner, id)
	if err != nil {
		return nil, err
	}
	return v.editors.Edit(eid)
}

func (s *ViewService) editorDeps(v *ViewSession) editor.Deps {
	kind := v.Kind
	return editor.Deps{
		Mutator: v.list.Mutator(),
		Reload:  v.list.InvalidateAndReload,
		Validate: func(changes editor.Fields) error {
			if err := dto.ValidateChanges(s.validator, kind, changes); err != nil {
				return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid changes")
			}
			return nil
		},
		OnApplied: func(applied editor.Applied) {
			s.logger.Info("entity mutated",
				zap.String("view_id", v.ID),
				zap.String("kind", string(kind)),
				zap.String("entity_id", applied.EntityID),
				zap.String("action", string(applied.Action)))
			if s.audit != nil {
				s.audit.RecordApplied(v.actor, kind, applied)
			}
		},
		Logger: s.logger,
	}
}

func (s *ViewService) teardown(v *ViewSession, reason string) {
	v.list.Close()
	s.metrics.ViewClosed()
	s.logger.Info("view closed", zap.String("view_id", v.ID), zap.String("reason", reason))
}

func applyFilters(list listSession, filters map[string]string, dr *dto.DateRangeRequest) error {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := list.SetCategory(k, filters[k]); err != nil {
			return err
		}
	}
	if dr == nil {
		return nil
	}
	r := filter.DateRange{Bucket: filter.Bucket(dr.Bucket)}
	if dr.Start != nil {
		r.Start = *dr.Start
	}
	if dr.End != nil {
		r.End = *dr.End
	}
	return list.SetDateRange(r)
}

// kindTitle turns tuition_requests into "Tuition Requests".
func kindTitle(kind models.EntityKind) string {
	words := strings.Split(string(kind), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
