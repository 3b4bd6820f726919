package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tawhid3482/geniustutors-console/internal/middleware"
	"github.com/tawhid3482/geniustutors-console/internal/models"
	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
)

type fakeTaxonomySrv struct {
	hit         bool
	err         error
	invalidated bool
}

func (f *fakeTaxonomySrv) Categories(context.Context) ([]models.Category, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return []models.Category{{Name: "Science", Subjects: []string{"Physics"}}}, f.hit, nil
}

func (f *fakeTaxonomySrv) Districts(context.Context) ([]models.District, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	return []models.District{{Name: "Dhaka", Areas: []string{"Mirpur"}}}, f.hit, nil
}

func (f *fakeTaxonomySrv) Invalidate(context.Context) error {
	f.invalidated = true
	return f.err
}

func TestTaxonomyHandlerReportsCacheHit(t *testing.T) {
	h := NewTaxonomyHandler(&fakeTaxonomySrv{hit: true})

	c, rec := newContext(http.MethodGet, "/taxonomy/categories", "")
	middleware.WithResponseMeta()(c)
	h.Categories(c)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(rec)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, env.Meta, "processing_time_ms")
	var categories []models.Category
	require.NoError(t, json.Unmarshal(env.Data, &categories))
	assert.Equal(t, "Science", categories[0].Name)

	c, rec = newContext(http.MethodGet, "/taxonomy/districts", "")
	h.Districts(c)
	assert.Equal(t, false, decode(rec).Meta["cache_hit"])
}

func TestTaxonomyHandlerBackendDown(t *testing.T) {
	h := NewTaxonomyHandler(&fakeTaxonomySrv{err: appErrors.Clone(appErrors.ErrBackendUnavailable, "")})

	c, rec := newContext(http.MethodGet, "/taxonomy/districts", "")
	h.Districts(c)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestTaxonomyHandlerInvalidate(t *testing.T) {
	srv := &fakeTaxonomySrv{}
	h := NewTaxonomyHandler(srv)

	c, rec := newContext(http.MethodDelete, "/taxonomy/cache", "")
	h.Invalidate(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, srv.invalidated)

	srv.err = errors.New("redis down")
	c, rec = newContext(http.MethodDelete, "/taxonomy/cache", "")
	h.Invalidate(c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
