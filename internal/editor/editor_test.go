package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tawhid3482/geniustutors-console/internal/selection"
	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
)

type fakeMutator struct {
	updates   []map[string]any
	deletes   []string
	updateErr error
	deleteErr error
}

func (m *fakeMutator) Update(_ context.Context, _ string, changes map[string]any) error {
	m.updates = append(m.updates, changes)
	return m.updateErr
}

func (m *fakeMutator) Delete(_ context.Context, id string) error {
	m.deletes = append(m.deletes, id)
	return m.deleteErr
}

type harness struct {
	mutator *fakeMutator
	reloads int
	applied []Applied
	deps    Deps
}

func newHarness() *harness {
	h := &harness{mutator: &fakeMutator{}}
	h.deps = Deps{
		Mutator: h.mutator,
		Reload: func(context.Context) error {
			h.reloads++
			return nil
		},
		OnApplied: func(a Applied) { h.applied = append(h.applied, a) },
	}
	return h
}

var tutor = Fields{"status": "pending", "verified": false, "genius": false, "premium": false}

func TestSubmitSendsStatusAndFlagsTogether(t *testing.T) {
	h := newHarness()
	s := NewSession("t1", tutor, h.deps)

	require.NoError(t, s.Begin())
	require.NoError(t, s.Propose("status", "approved"))
	require.NoError(t, s.Propose("verified", true))
	require.NoError(t, s.Propose("premium", true))
	require.NoError(t, s.Propose("genius", false))

	require.NoError(t, s.Submit(context.Background()))

	require.Len(t, h.mutator.updates, 1)
	assert.Equal(t, map[string]any{"status": "approved", "verified": true, "premium": true}, h.mutator.updates[0])
	assert.Equal(t, PhaseApplied, s.Phase())
	assert.Equal(t, 1, h.reloads)
	require.Len(t, h.applied, 1)
	assert.Equal(t, ActionUpdate, h.applied[0].Action)
	assert.Equal(t, "pending", h.applied[0].Original["status"])
}

func TestSubmitWithoutChangesIsRejected(t *testing.T) {
	h := newHarness()
	s := NewSession("t1", tutor, h.deps)
	require.NoError(t, s.Propose("status", "pending"))

	assert.False(t, s.HasChanges())
	err := s.Submit(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrNoChanges))
	assert.Empty(t, h.mutator.updates)
	assert.Zero(t, h.reloads)
}

func TestFailedSubmitKeepsProposedChanges(t *testing.T) {
	h := newHarness()
	h.mutator.updateErr = appErrors.Clone(appErrors.ErrBackendRejected, "tutor already reviewed")
	s := NewSession("t1", tutor, h.deps)
	require.NoError(t, s.Propose("status", "rejected"))

	err := s.Submit(context.Background())
	require.Error(t, err)

	view := s.View()
	assert.Equal(t, PhaseFailed, view.Phase)
	assert.Equal(t, "tutor already reviewed", view.Error)
	assert.Equal(t, Fields{"status": "rejected"}, view.Changes)
	assert.Zero(t, h.reloads)

	h.mutator.updateErr = nil
	require.NoError(t, s.Submit(context.Background()))
	assert.Len(t, h.mutator.updates, 2)
	assert.Equal(t, 1, h.reloads)
}

func TestValidationRunsBeforeCall(t *testing.T) {
	h := newHarness()
	h.deps.Validate = func(changes Fields) error {
		if changes["status"] == "" {
			return appErrors.Clone(appErrors.ErrValidation, "status is required")
		}
		return nil
	}
	s := NewSession("t1", tutor, h.deps)
	require.NoError(t, s.Propose("status", ""))

	err := s.Submit(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, h.mutator.updates)
	assert.Equal(t, PhaseEditing, s.Phase())
}

func TestAppliedSessionRejectsFurtherEdits(t *testing.T) {
	h := newHarness()
	s := NewSession("t1", tutor, h.deps)
	require.NoError(t, s.Propose("verified", true))
	require.NoError(t, s.Submit(context.Background()))

	assert.Error(t, s.Propose("verified", false))
	assert.Error(t, s.Submit(context.Background()))
}

func TestReloadFailureDoesNotFailMutation(t *testing.T) {
	h := newHarness()
	h.deps.Reload = func(context.Context) error { return errors.New("offline") }
	s := NewSession("t1", tutor, h.deps)
	require.NoError(t, s.Propose("genius", true))

	require.NoError(t, s.Submit(context.Background()))
	assert.Equal(t, PhaseApplied, s.Phase())
}

func TestEditTagsFeedsDiff(t *testing.T) {
	h := newHarness()
	catalog := selection.Catalog{
		{Name: "Science", Children: map[string][]string{"subjects": {"Physics", "Chemistry"}}},
		{Name: "Math", Children: map[string][]string{"subjects": {"Algebra"}}},
	}
	original := Fields{"categories": []string{"Science"}, "subjects": []string{"Physics"}}
	s := NewSession("t1", original, h.deps)
	tags := selection.NewCascade("categories", catalog, "subjects")
	tags.Load([]string{"Science"}, map[string][]string{"subjects": {"Physics"}})
	s.AttachTags(tags)

	require.NoError(t, s.EditTags("subjects", func(c *selection.Cascade) error { return c.Add("subjects", "physics") }))
	assert.False(t, s.HasChanges())

	require.NoError(t, s.EditTags("categories", func(c *selection.Cascade) error { return c.Add("categories", "Math") }))
	require.NoError(t, s.EditTags("subjects", func(c *selection.Cascade) error { return c.Add("subjects", "Algebra") }))

	assert.Equal(t, Fields{
		"categories": []string{"Science", "Math"},
		"subjects":   []string{"Physics", "Algebra"},
	}, s.Changes())

	err := s.EditTags("subjects", func(c *selection.Cascade) error { return c.Add("subjects", "Zoology") })
	assert.Error(t, err)
}

func TestEditTagsWithoutCascade(t *testing.T) {
	s := NewSession("t1", tutor, newHarness().deps)
	assert.Error(t, s.EditTags("subjects", func(*selection.Cascade) error { return nil }))
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	h := newHarness()
	d := NewDeleteSession("r1", Fields{"status": "Active"}, h.deps)

	err := d.Confirm(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrInvalidState))
	assert.Empty(t, h.mutator.deletes)

	require.NoError(t, d.Request())
	assert.Equal(t, PhaseConfirmPending, d.Phase())
	d.Cancel()
	assert.Equal(t, PhaseViewing, d.Phase())

	require.NoError(t, d.Request())
	require.NoError(t, d.Confirm(context.Background()))
	assert.Equal(t, []string{"r1"}, h.mutator.deletes)
	assert.Equal(t, PhaseApplied, d.Phase())
	assert.Equal(t, 1, h.reloads)
	require.Len(t, h.applied, 1)
	assert.Equal(t, ActionDelete, h.applied[0].Action)
}

func TestDeleteFailureNeedsFreshConfirmation(t *testing.T) {
	h := newHarness()
	h.mutator.deleteErr = appErrors.Clone(appErrors.ErrBackendRejected, "request has an assigned tutor")
	d := NewDeleteSession("r1", nil, h.deps)

	require.NoError(t, d.Request())
	require.Error(t, d.Confirm(context.Background()))
	assert.Equal(t, "request has an assigned tutor", d.View().Error)

	assert.Error(t, d.Confirm(context.Background()))
	assert.Len(t, h.mutator.deletes, 1)
	assert.Zero(t, h.reloads)
}

func TestRegistryScopesSurfacesPerEntity(t *testing.T) {
	h := newHarness()
	r := NewRegistry(h.deps)

	a := r.OpenEdit("a", tutor)
	b := r.OpenEdit("b", tutor)
	require.NoError(t, a.Propose("status", "approved"))
	require.NoError(t, b.Propose("status", "rejected"))

	assert.Same(t, a, r.OpenEdit("a", tutor))
	assert.Equal(t, "approved", a.Changes()["status"])
	assert.Equal(t, "rejected", b.Changes()["status"])

	require.NoError(t, a.Submit(context.Background()))
	fresh := r.OpenEdit("a", Fields{"status": "approved"})
	assert.NotSame(t, a, fresh)
	assert.False(t, fresh.HasChanges())

	assert.True(t, r.CloseEdit("b"))
	_, err := r.Edit("b")
	assert.Error(t, err)

	d := r.OpenDelete("a", nil)
	got, err := r.Delete("a")
	require.NoError(t, err)
	assert.Same(t, d, got)
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.CloseDelete("a"))
}

func TestTagOptionsFollowParents(t *testing.T) {
	catalog := selection.Catalog{
		{Name: "Dhaka", Children: map[string][]string{"preferred_areas": {"Mirpur", "Dhanmondi"}}},
		{Name: "Sylhet", Children: map[string][]string{"preferred_areas": {"Zindabazar"}}},
	}
	s := NewSession("t1", Fields{}, newHarness().deps)
	s.AttachTags(selection.NewCascade("preferred_districts", catalog, "preferred_areas"))

	opts, err := s.TagOptions("preferred_areas", "")
	require.NoError(t, err)
	assert.Empty(t, opts)

	require.NoError(t, s.EditTags("preferred_districts", func(c *selection.Cascade) error { return c.Add("preferred_districts", "dhaka") }))
	opts, err = s.TagOptions("preferred_areas", "mir")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mirpur"}, opts)

	opts, err = s.TagOptions("preferred_districts", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dhaka", "Sylhet"}, opts)

	_, err = s.TagOptions("mediums", "")
	assert.Error(t, err)
}
