package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tawhid3482/geniustutors-console/internal/models"
	"github.com/tawhid3482/geniustutors-console/internal/selection"
)

// Tag groups fed by the taxonomy catalogues.
const (
	GroupCategories         = "categories"
	GroupSubjects           = "subjects"
	GroupClasses            = "classes"
	GroupPreferredDistricts = "preferred_districts"
	GroupPreferredAreas     = "preferred_areas"
)

const (
	categoriesCacheKey = "taxonomy:categories"
	districtsCacheKey  = "taxonomy:districts"
)

type taxonomySource interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Districts(ctx context.Context) ([]models.District, error)
}

// TaxonomyService serves the category and district catalogues behind the tag editors.
type TaxonomyService struct {
	source taxonomySource
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewTaxonomyService constructs a TaxonomyService. cache may be nil.
func NewTaxonomyService(source taxonomySource, cache *CacheService, ttl time.Duration, logger *zap.Logger) *TaxonomyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaxonomyService{source: source, cache: cache, ttl: ttl, logger: logger}
}

// Categories returns the category catalogue and whether it came from cache.
func (s *TaxonomyService) Categories(ctx context.Context) ([]models.Category, bool, error) {
	categories, hit, err := Remember(ctx, s.cache, categoriesCacheKey, s.ttl, s.source.Categories)
	if err != nil {
		return nil, false, err
	}
	s.logger.Debug("categories loaded", zap.Bool("cache_hit", hit), zap.Int("count", len(categories)))
	return categories, hit, nil
}

// Districts returns the district catalogue and whether it came from cache.
func (s *TaxonomyService) Districts(ctx context.Context) ([]models.District, bool, error) {
	districts, hit, err := Remember(ctx, s.cache, districtsCacheKey, s.ttl, s.source.Districts)
	if err != nil {
		return nil, false, err
	}
	s.logger.Debug("districts loaded", zap.Bool("cache_hit", hit), zap.Int("count", len(districts)))
	return districts, hit, nil
}

// Load fetches both catalogues concurrently.
func (s *TaxonomyService) Load(ctx context.Context) (models.Taxonomy, error) {
	var out models.Taxonomy
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories, _, err := s.Categories(gctx)
		out.Categories = categories
		return err
	})
	g.Go(func() error {
		districts, _, err := s.Districts(gctx)
		out.Districts = districts
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Taxonomy{}, err
	}
	return out, nil
}

// Invalidate drops the cached catalogues.
func (s *TaxonomyService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, "taxonomy:*")
}

// Cascades builds the tutor tag editors seeded from the tutor's current tags.
func (s *TaxonomyService) Cascades(ctx context.Context, fields map[string]any) ([]*selection.Cascade, error) {
	taxonomy, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	subjects := selection.NewCascade(GroupCategories, CategoryCatalog(taxonomy.Categories), GroupSubjects, GroupClasses)
	subjects.Load(StringList(fields[GroupCategories]), map[string][]string{
		GroupSubjects: StringList(fields[GroupSubjects]),
		GroupClasses:  StringList(fields[GroupClasses]),
	})
	locations := selection.NewCascade(GroupPreferredDistricts, DistrictCatalog(taxonomy.Districts), GroupPreferredAreas)
	locations.Load(StringList(fields[GroupPreferredDistricts]), map[string][]string{
		GroupPreferredAreas: StringList(fields[GroupPreferredAreas]),
	})
	return []*selection.Cascade{subjects, locations}, nil
}

// CategoryCatalog scopes subjects and classes to their category.
func CategoryCatalog(categories []models.Category) selection.Catalog {
	out := make(selection.Catalog, 0, len(categories))
	for _, c := range categories {
		out = append(out, selection.Node{
			Name: c.Name,
			Children: map[string][]string{
				GroupSubjects: c.Subjects,
				GroupClasses:  c.Classes,
			},
		})
	}
	return out
}

// DistrictCatalog scopes areas to their district.
func DistrictCatalog(districts []models.District) selection.Catalog {
	out := make(selection.Catalog, 0, len(districts))
	for _, d := range districts {
		out = append(out, selection.Node{
			Name:     d.Name,
			Children: map[string][]string{GroupPreferredAreas: d.Areas},
		})
	}
	return out
}

// StringList normalises a decoded JSON value into a string slice.
func StringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	}
	return nil
}
