package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tawhid3482/geniustutors-console/internal/models"
	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
)

type stubTaxonomy struct {
	mu            sync.Mutex
	categoryCalls int
	districtCalls int
	districtErr   error
}

func (s *stubTaxonomy) Categories(context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoryCalls++
	return []models.Category{
		{Name: "Science", Subjects: []string{"Physics", "Chemistry"}, Classes: []string{"Class 9"}},
		{Name: "Math", Subjects: []string{"Algebra", "Physics"}, Classes: []string{"Class 8"}},
	}, nil
}

func (s *stubTaxonomy) Districts(context.Context) ([]models.District, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.districtCalls++
	if s.districtErr != nil {
		return nil, s.districtErr
	}
	return []models.District{{Name: "Dhaka", Areas: []string{"Mirpur", "Uttara"}}}, nil
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}

func TestTaxonomyLoadUsesCache(t *testing.T) {
	source := &stubTaxonomy{}
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	svc := NewTaxonomyService(source, cache, time.Minute, nil)

	tax, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, tax.Categories, 2)
	assert.Len(t, tax.Districts, 1)

	categories, hit, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Science", categories[0].Name)
	assert.Equal(t, 1, source.categoryCalls)

	require.NoError(t, svc.Invalidate(context.Background()))
	_, hit, err = svc.Districts(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, source.districtCalls)
}

func TestTaxonomyLoadFailsWhenEitherFails(t *testing.T) {
	source := &stubTaxonomy{districtErr: appErrors.Clone(appErrors.ErrBackendUnavailable, "")}
	svc := NewTaxonomyService(source, nil, time.Minute, nil)

	_, err := svc.Load(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrBackendUnavailable))
}

func TestTaxonomyCascadesSeedFromFields(t *testing.T) {
	svc := NewTaxonomyService(&stubTaxonomy{}, nil, time.Minute, nil)

	cascades, err := svc.Cascades(context.Background(), map[string]any{
		GroupCategories:         []string{"Science", "Math"},
		GroupSubjects:           []any{"Physics", "Algebra"},
		GroupPreferredDistricts: "Dhaka",
	})
	require.NoError(t, err)
	require.Len(t, cascades, 2)

	subjects := cascades[0]
	assert.Equal(t, []string{"Physics", "Chemistry", "Algebra"}, subjects.Options(GroupSubjects))
	assert.True(t, subjects.Remove(GroupCategories, "Math"))
	assert.Equal(t, []string{"Physics"}, subjects.Selected(GroupSubjects))

	locations := cascades[1]
	assert.Equal(t, []string{"Dhaka"}, locations.Selected(GroupPreferredDistricts))
	assert.Equal(t, []string{"Mirpur", "Uttara"}, locations.Options(GroupPreferredAreas))
}

func TestStringList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, StringList([]any{"a", 3, "b"}))
	assert.Equal(t, []string{"x"}, StringList("x"))
	assert.Nil(t, StringList(""))
	assert.Nil(t, StringList(42))
}
