package editor

import (
	"sync"

	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
)

// Registry holds the open surfaces of one view, at most one edit and one
// delete surface per entity id. Each surface owns its own diff.
type Registry struct {
	deps Deps

	mu      sync.Mutex
	edits   map[string]*Session
	deletes map[string]*DeleteSession
}

// NewRegistry builds an empty Registry sharing deps across surfaces.
func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:    deps,
		edits:   make(map[string]*Session),
		deletes: make(map[string]*DeleteSession),
	}
}

// OpenEdit returns the edit surface for id, creating it from original when absent.
// Applied surfaces are replaced so a fresh edit starts from the reloaded record.
func (r *Registry) OpenEdit(id string, original Fields) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.edits[id]; ok && s.Phase() != PhaseApplied {
		return s
	}
	s := NewSession(id, original, r.deps)
	r.edits[id] = s
	return s
}

// Edit returns the open edit surface for id.
func (r *Registry) Edit(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.edits[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no edit open for "+id)
	}
	return s, nil
}

// CloseEdit discards the edit surface and its pending changes.
func (r *Registry) CloseEdit(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.edits[id]
	if !ok {
		return false
	}
	if s.Phase() == PhaseSubmitting {
		return false
	}
	delete(r.edits, id)
	return true
}

// OpenDelete returns the delete surface for id, creating it when absent.
func (r *Registry) OpenDelete(id string, original Fields) *DeleteSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.deletes[id]; ok && d.Phase() != PhaseApplied {
		return d
	}
	d := NewDeleteSession(id, original, r.deps)
	r.deletes[id] = d
	return d
}

// Delete returns the open delete surface for id.
func (r *Registry) Delete(id string) (*DeleteSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deletes[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no deletion pending for "+id)
	}
	return d, nil
}

// CloseDelete drops the delete surface for id.
func (r *Registry) CloseDelete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deletes[id]
	if !ok || d.Phase() == PhaseSubmitting {
		return false
	}
	delete(r.deletes, id)
	return true
}

// Len returns the number of open surfaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.edits) + len(r.deletes)
}
