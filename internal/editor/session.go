package editor

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/tawhid3482/geniustutors-console/internal/selection"
	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
)

// Phase is the state of an editing or deletion surface.
type Phase string

const (
	PhaseViewing        Phase = "viewing"
	PhaseEditing        Phase = "editing"
	PhaseConfirmPending Phase = "confirm_pending"
	PhaseSubmitting     Phase = "submitting"
	PhaseApplied        Phase = "applied"
	PhaseFailed         Phase = "failed"
)

// Fields is a partial record of entity fields keyed by wire name.
type Fields map[string]any

// Clone returns a shallow copy with slices copied.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if s, ok := v.([]string); ok {
			v = append([]string(nil), s...)
		}
		out[k] = v
	}
	return out
}

// Keys returns the field names sorted.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Mutator applies changes on the backend.
type Mutator interface {
	Update(ctx context.Context, id string, changes map[string]any) error
	Delete(ctx context.Context, id string) error
}

// ReloadFunc re-fetches the authoritative list after a mutation.
type ReloadFunc func(ctx context.Context) error

// ValidateFunc rejects malformed changes before any call is made.
type ValidateFunc func(changes Fields) error

// Action names the kind of applied mutation.
type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Applied describes a mutation the backend accepted.
type Applied struct {
	EntityID string
	Action   Action
	Original Fields
	Changes  Fields
}

// Deps are the collaborators shared by every surface of one view.
type Deps struct {
	Mutator   Mutator
	Reload    ReloadFunc
	Validate  ValidateFunc
	OnApplied func(Applied)
	Logger    *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Session edits one entity. Viewing -> Editing -> Submitting -> Applied|Failed.
// A failed submit keeps the proposed changes so the user can retry.
type Session struct {
	id   string
	deps Deps

	mu       sync.Mutex
	original Fields
	proposed Fields
	phase    Phase
	lastErr  error
	tags     []*selection.Cascade
}

// NewSession opens a viewing surface over original.
func NewSession(id string, original Fields, deps Deps) *Session {
	return &Session{
		id:       id,
		deps:     deps,
		original: original.Clone(),
		proposed: Fields{},
		phase:    PhaseViewing,
	}
}

// ID returns the entity id the session is scoped to.
func (s *Session) ID() string {
	return s.id
}

// Begin enters Editing.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhaseViewing, PhaseFailed, PhaseEditing:
		s.phase = PhaseEditing
		return nil
	}
	return appErrors.Clone(appErrors.ErrInvalidState, "cannot edit while "+string(s.phase))
}

// Propose records a proposed value for field.
func (s *Session) Propose(field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proposeLocked(field, value)
}

// ProposeAll records several proposed values at once.
func (s *Session) ProposeAll(changes Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range changes.Keys() {
		if err := s.proposeLocked(k, changes[k]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) proposeLocked(field string, value any) error {
	if !s.editableLocked() {
		return appErrors.Clone(appErrors.ErrInvalidState, "cannot change fields while "+string(s.phase))
	}
	if s.phase == PhaseViewing || s.phase == PhaseFailed {
		s.phase = PhaseEditing
	}
	if v, ok := value.([]string); ok {
		value = append([]string(nil), v...)
	}
	s.proposed[field] = value
	return nil
}

func (s *Session) editableLocked() bool {
	switch s.phase {
	case PhaseViewing, PhaseEditing, PhaseFailed:
		return true
	}
	return false
}

// AttachTags binds tag-editor cascades whose selections feed the proposed changes.
func (s *Session) AttachTags(cascades ...*selection.Cascade) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = append(s.tags, cascades...)
}

// EditTags runs fn on the cascade owning group and syncs its groups into the diff.
func (s *Session) EditTags(group string, fn func(c *selection.Cascade) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cascadeLocked(group)
	if c == nil {
		return appErrors.Clone(appErrors.ErrValidation, "no tag editor for "+group)
	}
	if !s.editableLocked() {
		return appErrors.Clone(appErrors.ErrInvalidState, "cannot change tags while "+string(s.phase))
	}
	if err := fn(c); err != nil {
		return err
	}
	for g, values := range c.Snapshot() {
		if err := s.proposeLocked(g, values); err != nil {
			return err
		}
	}
	return nil
}

// Tags returns the cascade owning group for read-only queries.
func (s *Session) Tags(group string) (*selection.Cascade, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cascadeLocked(group)
	return c, c != nil
}

// TagOptions returns the selectable values of group narrowed by query.
func (s *Session) TagOptions(group, query string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cascadeLocked(group)
	if c == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no tag editor for "+group)
	}
	return c.SearchOptions(group, query), nil
}

func (s *Session) cascadeLocked(group string) *selection.Cascade {
	for _, c := range s.tags {
		if c.HasGroup(group) {
			return c
		}
	}
	return nil
}

// Changes returns proposed fields that differ from the original.
func (s *Session) Changes() Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changesLocked()
}

func (s *Session) changesLocked() Fields {
	out := Fields{}
	for k, v := range s.proposed {
		if !equalValue(s.original[k], v) {
			out[k] = v
		}
	}
	return out
}

// HasChanges reports whether submitting would send anything.
func (s *Session) HasChanges() bool {
	return len(s.Changes()) > 0
}

// Submit sends every change in one Update call. On success the session is
// Applied and the list is reloaded; on failure the proposed values are kept.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == PhaseSubmitting || s.phase == PhaseApplied {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrInvalidState, "cannot submit while "+string(s.phase))
	}
	changes := s.changesLocked()
	if len(changes) == 0 {
		s.mu.Unlock()
		return appErrors.ErrNoChanges
	}
	if s.deps.Validate != nil {
		if err := s.deps.Validate(changes.Clone()); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.phase = PhaseSubmitting
	s.lastErr = nil
	original := s.original.Clone()
	s.mu.Unlock()

	err := s.deps.Mutator.Update(ctx, s.id, changes)

	s.mu.Lock()
	if err != nil {
		s.phase = PhaseFailed
		s.lastErr = err
		s.mu.Unlock()
		s.deps.logger().Warn("entity update failed", zap.String("entity_id", s.id), zap.Error(err))
		return err
	}
	s.phase = PhaseApplied
	s.mu.Unlock()

	finish(ctx, s.deps, Applied{EntityID: s.id, Action: ActionUpdate, Original: original, Changes: changes})
	return nil
}

// View is a read-only projection of a Session.
type View struct {
	EntityID   string              `json:"entity_id"`
	Phase      Phase               `json:"phase"`
	Original   Fields              `json:"original"`
	Proposed   Fields              `json:"proposed"`
	Changes    Fields              `json:"changes"`
	HasChanges bool                `json:"has_changes"`
	Error      string              `json:"error,omitempty"`
	Tags       map[string][]string `json:"tags,omitempty"`
}

// View returns the current projection.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	changes := s.changesLocked()
	v := View{
		EntityID:   s.id,
		Phase:      s.phase,
		Original:   s.original.Clone(),
		Proposed:   s.proposed.Clone(),
		Changes:    changes,
		HasChanges: len(changes) > 0,
		Error:      appErrors.UserMessage(s.lastErr),
	}
	if len(s.tags) > 0 {
		v.Tags = make(map[string][]string)
		for _, c := range s.tags {
			for g, values := range c.Snapshot() {
				v.Tags[g] = values
			}
		}
	}
	return v
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func finish(ctx context.Context, deps Deps, applied Applied) {
	if deps.OnApplied != nil {
		deps.OnApplied(applied)
	}
	if deps.Reload == nil {
		return
	}
	if err := deps.Reload(ctx); err != nil {
		// the list keeps its last good items and reports the error itself
		deps.logger().Warn("reload after mutation failed",
			zap.String("entity_id", applied.EntityID),
			zap.String("action", string(applied.Action)),
			zap.Error(err))
	}
}

func equalValue(a, b any) bool {
	as, aok := a.([]string)
	bs, bok := b.([]string)
	if aok || bok {
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if as[i] != bs[i] {
				return false
			}
		}
		return (aok || a == nil) && (bok || b == nil)
	}
	return reflect.DeepEqual(a, b)
}
