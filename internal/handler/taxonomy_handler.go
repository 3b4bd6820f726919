package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tawhid3482/geniustutors-console/internal/middleware"
	"github.com/tawhid3482/geniustutors-console/internal/models"
	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
	"github.com/tawhid3482/geniustutors-console/pkg/response"
)

type taxonomyService interface {
	Categories(ctx context.Context) ([]models.Category, bool, error)
	Districts(ctx context.Context) ([]models.District, bool, error)
	Invalidate(ctx context.Context) error
}

// TaxonomyHandler exposes the tag catalogues.
type TaxonomyHandler struct {
	service taxonomyService
}

// NewTaxonomyHandler constructs the handler.
func NewTaxonomyHandler(service taxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{service: service}
}

// Categories godoc
// @Summary Category catalogue
// @Description Categories with their subjects and class levels
// @Tags Taxonomy
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /taxonomy/categories [get]
func (h *TaxonomyHandler) Categories(c *gin.Context) {
	categories, hit, err := h.service.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, categories, nil, middleware.ExtractMeta(c))
}

// Districts godoc
// @Summary District catalogue
// @Description Districts with their areas
// @Tags Taxonomy
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /taxonomy/districts [get]
func (h *TaxonomyHandler) Districts(c *gin.Context) {
	districts, hit, err := h.service.Districts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, districts, nil, middleware.ExtractMeta(c))
}

// Invalidate godoc
// @Summary Drop cached catalogues
// @Tags Taxonomy
// @Success 204 {object} response.Envelope
// @Router /taxonomy/cache [delete]
func (h *TaxonomyHandler) Invalidate(c *gin.Context) {
	if err := h.service.Invalidate(c.Request.Context()); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate taxonomy cache"))
		return
	}
	response.NoContent(c)
}
