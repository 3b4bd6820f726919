package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
)

var catalog = Catalog{
	{Name: "Science", Children: map[string][]string{
		"subjects": {"Physics", "Chemistry", "Biology"},
		"classes":  {"Class 9", "Class 10"},
	}},
	{Name: "Math", Children: map[string][]string{
		"subjects": {"Algebra", "physics", "Geometry"},
		"classes":  {"Class 10", "HSC"},
	}},
	{Name: "Language", Children: map[string][]string{
		"subjects": {"English", "Bangla"},
	}},
}

func TestSetUniquenessAndOrder(t *testing.T) {
	s := NewSet()
	assert.True(t, s.Add("Physics"))
	assert.False(t, s.Add("Physics"))
	assert.Equal(t, 1, s.Len())

	assert.False(t, s.Remove("Chemistry"))
	assert.Equal(t, 1, s.Len())

	s.Add("Chemistry")
	s.Add("Algebra")
	assert.Equal(t, []string{"Physics", "Chemistry", "Algebra"}, s.Values())

	assert.True(t, s.Remove("Chemistry"))
	assert.Equal(t, []string{"Physics", "Algebra"}, s.Values())
	assert.False(t, s.Contains("Chemistry"))
}

func TestSetAddCustom(t *testing.T) {
	s := NewSet("English")
	require.NoError(t, s.AddCustom("  Arabic "))
	require.NoError(t, s.AddCustom("Arabic"))
	assert.Equal(t, []string{"English", "Arabic"}, s.Values())

	err := s.AddCustom("   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestSetValuesIsACopy(t *testing.T) {
	s := NewSet("a", "b")
	values := s.Values()
	values[0] = "z"
	assert.Equal(t, []string{"a", "b"}, s.Values())
}

func TestSearchNarrowsOptions(t *testing.T) {
	options := []string{"Physics", "Chemistry", "Physical Education"}
	assert.Equal(t, []string{"Physics", "Physical Education"}, Search(options, "PHYS"))
	assert.Equal(t, options, Search(options, ""))
}

func TestCascadeRemovingParentPrunesOnlyOrphans(t *testing.T) {
	c := NewCascade("categories", catalog, "subjects", "classes")
	require.NoError(t, c.Add("categories", "Science"))
	require.NoError(t, c.Add("categories", "Math"))
	require.NoError(t, c.Add("subjects", "Physics"))
	require.NoError(t, c.Add("subjects", "Algebra"))
	require.NoError(t, c.Add("classes", "HSC"))
	require.NoError(t, c.Add("classes", "Class 10"))

	assert.True(t, c.Remove("categories", "Math"))

	assert.Equal(t, []string{"Physics"}, c.Selected("subjects"))
	assert.Equal(t, []string{"Class 10"}, c.Selected("classes"))
	assert.Equal(t, []string{"Physics", "Chemistry", "Biology"}, c.Options("subjects"))
}

func TestCascadeRemoveIgnoresCase(t *testing.T) {
	c := NewCascade("categories", catalog, "subjects")
	require.NoError(t, c.Add("categories", "science"))
	require.NoError(t, c.Add("subjects", "physics"))
	require.NoError(t, c.AddCustom("subjects", "Robotics"))

	assert.True(t, c.Remove("subjects", "ROBOTICS"))
	assert.Equal(t, []string{"Physics"}, c.Selected("subjects"))
	assert.False(t, c.Remove("subjects", "robotics"))

	assert.True(t, c.Remove("categories", "science"))
	assert.Empty(t, c.Selected("categories"))
	assert.Empty(t, c.Selected("subjects"))
	assert.False(t, c.Remove("categories", "Science"))
}

func TestCascadeOptionsAreDedupedUnion(t *testing.T) {
	c := NewCascade("categories", catalog, "subjects")
	require.NoError(t, c.Add("categories", "science"))
	require.NoError(t, c.Add("categories", "Math"))

	assert.Equal(t, []string{"Science", "Math"}, c.Selected("categories"))
	assert.Equal(t, []string{"Physics", "Chemistry", "Biology", "Algebra", "Geometry"}, c.Options("subjects"))
	assert.Equal(t, []string{"Geometry"}, c.SearchOptions("subjects", "geo"))
}

func TestCascadeRejectsOutOfScopeValues(t *testing.T) {
	c := NewCascade("categories", catalog, "subjects")
	require.NoError(t, c.Add("categories", "Language"))

	err := c.Add("subjects", "Physics")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	assert.Error(t, c.Add("categories", "Astrology"))
	assert.Error(t, c.Add("grades", "A"))
}

func TestCascadeCustomValuesSurviveParentChanges(t *testing.T) {
	c := NewCascade("categories", catalog, "subjects")
	require.NoError(t, c.Add("categories", "Language"))
	require.NoError(t, c.Add("subjects", "English"))
	require.NoError(t, c.AddCustom("subjects", "Arabic"))

	c.Remove("categories", "Language")

	assert.Equal(t, []string{"Arabic"}, c.Selected("subjects"))
	assert.Empty(t, c.Options("subjects"))
}

func TestCascadeLoadKeepsExistingSelections(t *testing.T) {
	c := NewCascade("categories", catalog, "subjects")
	c.Load([]string{"Science"}, map[string][]string{"subjects": {"Physics", "Robotics"}})

	assert.Equal(t, map[string][]string{
		"categories": {"Science"},
		"subjects":   {"Physics", "Robotics"},
	}, c.Snapshot())

	require.NoError(t, c.Add("categories", "Math"))
	assert.Equal(t, []string{"Physics", "Robotics"}, c.Selected("subjects"))
}
