package editor

import (
	"context"
	"sync"

	"go.uber.org/zap"

	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
)

// DeleteSession guards a destructive call behind an explicit confirmation.
// Viewing -> ConfirmPending -> Submitting -> Applied|Failed.
type DeleteSession struct {
	id       string
	original Fields
	deps     Deps

	mu      sync.Mutex
	phase   Phase
	lastErr error
}

// NewDeleteSession opens a deletion surface for id.
func NewDeleteSession(id string, original Fields, deps Deps) *DeleteSession {
	return &DeleteSession{id: id, original: original.Clone(), deps: deps, phase: PhaseViewing}
}

// ID returns the entity id.
func (d *DeleteSession) ID() string {
	return d.id
}

// Request asks for confirmation.
func (d *DeleteSession) Request() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.phase {
	case PhaseViewing, PhaseConfirmPending, PhaseFailed:
		d.phase = PhaseConfirmPending
		return nil
	}
	return appErrors.Clone(appErrors.ErrInvalidState, "cannot request deletion while "+string(d.phase))
}

// Cancel withdraws a pending confirmation.
func (d *DeleteSession) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase == PhaseConfirmPending || d.phase == PhaseFailed {
		d.phase = PhaseViewing
		d.lastErr = nil
	}
}

// Confirm fires the delete call. It is rejected unless confirmation is pending.
func (d *DeleteSession) Confirm(ctx context.Context) error {
	d.mu.Lock()
	if d.phase != PhaseConfirmPending {
		d.mu.Unlock()
		return appErrors.Clone(appErrors.ErrInvalidState, "deletion must be requested before it is confirmed")
	}
	d.phase = PhaseSubmitting
	d.lastErr = nil
	d.mu.Unlock()

	err := d.deps.Mutator.Delete(ctx, d.id)

	d.mu.Lock()
	if err != nil {
		d.phase = PhaseFailed
		d.lastErr = err
		d.mu.Unlock()
		d.deps.logger().Warn("entity delete failed", zap.String("entity_id", d.id), zap.Error(err))
		return err
	}
	d.phase = PhaseApplied
	d.mu.Unlock()

	finish(ctx, d.deps, Applied{EntityID: d.id, Action: ActionDelete, Original: d.original.Clone()})
	return nil
}

// Phase returns the current phase.
func (d *DeleteSession) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

// DeleteView is a read-only projection of a DeleteSession.
type DeleteView struct {
	EntityID string `json:"entity_id"`
	Phase    Phase  `json:"phase"`
	Error    string `json:"error,omitempty"`
}

// View returns the current projection.
func (d *DeleteSession) View() DeleteView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DeleteView{EntityID: d.id, Phase: d.phase, Error: appErrors.UserMessage(d.lastErr)}
}
