package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tawhid3482/geniustutors-console/internal/dto"
	"github.com/tawhid3482/geniustutors-console/internal/editor"
	"github.com/tawhid3482/geniustutors-console/internal/models"
	"github.com/tawhid3482/geniustutors-console/internal/service"
	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
	"github.com/tawhid3482/geniustutors-console/pkg/export"
	"github.com/tawhid3482/geniustutors-console/pkg/response"
)

type viewService interface {
	Create(ctx context.Context, actor service.Actor, role models.UserRole, req dto.CreateViewRequest) (service.ViewState, error)
	Get(owner, id string) (service.ViewState, error)
	Query(owner, id string, req dto.ViewQueryRequest) (service.ViewState, error)
	Keystroke(owner, id string, req dto.KeystrokeRequest) (service.ViewState, error)
	Refresh(ctx context.Context, owner, id string) (service.ViewState, error)
	Close(owner, id string) error
	Sessions(owner string) []string

	OpenEdit(ctx context.Context, owner, id, eid string) (editor.View, error)
	ProposeEdit(owner, id, eid string, req dto.ProposeChangesRequest) (editor.View, error)
	SubmitEdit(ctx context.Context, owner, id, eid string) (editor.View, error)
	CloseEdit(owner, id, eid string) error
	EditTags(owner, id, eid, group string, req dto.TagRequest) (editor.View, error)
	TagOptions(owner, id, eid, group, query string) ([]string, error)

	RequestDelete(owner, id, eid string) (editor.DeleteView, error)
	ConfirmDelete(ctx context.Context, owner, id, eid string) (editor.DeleteView, error)
	CancelDelete(owner, id, eid string) error

	Export(owner, id string) (export.Table, models.EntityKind, error)
}

// ViewHandler exposes list views, their edit and delete surfaces, and exports.
type ViewHandler struct {
	service        viewService
	exportsEnabled bool
	logger         *zap.Logger
}

// NewViewHandler constructs the handler.
func NewViewHandler(service viewService, exportsEnabled bool, logger *zap.Logger) *ViewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewHandler{service: service, exportsEnabled: exportsEnabled, logger: logger}
}

// Create godoc
// @Summary Open a list view
// @Description Opens a filtered, paginated view over one entity kind and loads its first page
// @Tags Views
// @Accept json
// @Produce json
// @Param payload body dto.CreateViewRequest true "View payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /views [post]
func (h *ViewHandler) Create(c *gin.Context) {
	claims, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid view payload"))
		return
	}
	state, err := h.service.Create(c.Request.Context(), actor, claims.Role, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, state, response.Page(state.Page))
}

// List godoc
// @Summary List open views
// @Tags Views
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /views [get]
func (h *ViewHandler) List(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.service.Sessions(actor.UserID), nil)
}

// Get godoc
// @Summary Current view state
// @Tags Views
// @Produce json
// @Param id path string true "View ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /views/{id} [get]
func (h *ViewHandler) Get(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	state, err := h.service.Get(actor.UserID, c.Param("id"))
	h.writeState(c, state, err)
}

// Query godoc
// @Summary Change a view's search, filters, page or selection
// @Tags Views
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param payload body dto.ViewQueryRequest true "Query payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /views/{id}/query [patch]
func (h *ViewHandler) Query(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.ViewQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query payload"))
		return
	}
	state, err := h.service.Query(actor.UserID, c.Param("id"), req)
	h.writeState(c, state, err)
}

// Keystroke godoc
// @Summary Feed the debounced search box
// @Tags Views
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param payload body dto.KeystrokeRequest true "Keystroke payload"
// @Success 200 {object} response.Envelope
// @Router /views/{id}/keystrokes [post]
func (h *ViewHandler) Keystroke(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.KeystrokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid keystroke payload"))
		return
	}
	state, err := h.service.Keystroke(actor.UserID, c.Param("id"), req)
	h.writeState(c, state, err)
}

// Refresh godoc
// @Summary Re-fetch a view
// @Tags Views
// @Produce json
// @Param id path string true "View ID"
// @Success 200 {object} response.Envelope
// @Router /views/{id}/refresh [post]
func (h *ViewHandler) Refresh(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	state, err := h.service.Refresh(c.Request.Context(), actor.UserID, c.Param("id"))
	h.writeState(c, state, err)
}

// Close godoc
// @Summary Close a view
// @Tags Views
// @Param id path string true "View ID"
// @Success 204 {object} response.Envelope
// @Router /views/{id} [delete]
func (h *ViewHandler) Close(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Close(actor.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// OpenEdit godoc
// @Summary Open the edit surface of a row
// @Tags Edits
// @Produce json
// @Param id path string true "View ID"
// @Param eid path string true "Entity ID"
// @Success 200 {object} response.Envelope
// @Router /views/{id}/edits/{eid} [post]
func (h *ViewHandler) OpenEdit(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	view, err := h.service.OpenEdit(c.Request.Context(), actor.UserID, c.Param("id"), c.Param("eid"))
	writeResult(c, view, err)
}

// ProposeEdit godoc
// @Summary Propose field values
// @Tags Edits
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param eid path string true "Entity ID"
// @Param payload body dto.ProposeChangesRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Router /views/{id}/edits/{eid} [patch]
func (h *ViewHandler) ProposeEdit(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.ProposeChangesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid changes payload"))
		return
	}
	view, err := h.service.ProposeEdit(actor.UserID, c.Param("id"), c.Param("eid"), req)
	writeResult(c, view, err)
}

// SubmitEdit godoc
// @Summary Send the pending diff to the backend
// @Tags Edits
// @Produce json
// @Param id path string true "View ID"
// @Param eid path string true "Entity ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /views/{id}/edits/{eid}/submit [post]
func (h *ViewHandler) SubmitEdit(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	view, err := h.service.SubmitEdit(c.Request.Context(), actor.UserID, c.Param("id"), c.Param("eid"))
	writeResult(c, view, err)
}

// CloseEdit godoc
// @Summary Discard the edit surface
// @Tags Edits
// @Param id path string true "View ID"
// @Param eid path string true "Entity ID"
// @Success 204 {object} response.Envelope
// @Router /views/{id}/edits/{eid} [delete]
func (h *ViewHandler) CloseEdit(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.CloseEdit(actor.UserID, c.Param("id"), c.Param("eid")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// EditTags godoc
// @Summary Add or remove a tag
// @Tags Edits
// @Accept json
// @Produce json
// @Param id path string true "View ID"
// @Param eid path string true "Entity ID"
// @Param group path string true "Tag group"
// @Param payload body dto.TagRequest true "Tag operation"
// @Success 200 {object} response.Envelope
// @Router /views/{id}/edits/{eid}/tags/{group} [post]
func (h *ViewHandler) EditTags(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid tag payload"))
		return
	}
	view, err := h.service.EditTags(actor.UserID, c.Param("id"), c.Param("eid"), c.Param("group"), req)
	writeResult(c, view, err)
}

// TagOptions godoc
// @Summary Selectable values of a tag group
// @Tags Edits
// @Produce json
// @Param id path string true "View ID"
// @Param eid path string true "Entity ID"
// @Param group path string true "Tag group"
// @Param q query string false "Search"
// @Success 200 {object} response.Envelope
// @Router /views/{id}/edits/{eid}/tags/{group}/options [get]
func (h *ViewHandler) TagOptions(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	options, err := h.service.TagOptions(actor.UserID, c.Param("id"), c.Param("eid"), c.Param("group"), c.Query("q"))
	writeResult(c, options, err)
}

// RequestDelete godoc
// @Summary Ask for delete confirmation
// @Tags Deletions
// @Produce json
// @Param id path string true "View ID"
// @Param eid path string true "Entity ID"
// @Success 200 {object} response.Envelope
// @Router /views/{id}/deletions/{eid} [post]
func (h *ViewHandler) RequestDelete(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	view, err := h.service.RequestDelete(actor.UserID, c.Param("id"), c.Param("eid"))
	writeResult(c, view, err)
}

// ConfirmDelete godoc
// @Summary Confirm a pending deletion
// @Tags Deletions
// @Produce json
// @Param id path string true "View ID"
// @Param eid path string true "Entity ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /views/{id}/deletions/{eid}/confirm [post]
func (h *ViewHandler) ConfirmDelete(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	view, err := h.service.ConfirmDelete(c.Request.Context(), actor.UserID, c.Param("id"), c.Param("eid"))
	writeResult(c, view, err)
}

// CancelDelete godoc
// @Summary Withdraw a pending deletion
// @Tags Deletions
// @Param id path string true "View ID"
// @Param eid path string true "Entity ID"
// @Success 204 {object} response.Envelope
// @Router /views/{id}/deletions/{eid} [delete]
func (h *ViewHandler) CancelDelete(c *gin.Context) {
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.CancelDelete(actor.UserID, c.Param("id"), c.Param("eid")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download the filtered rows
// @Tags Views
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "View ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /views/{id}/export [get]
func (h *ViewHandler) Export(c *gin.Context) {
	if !h.exportsEnabled {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled"))
		return
	}
	_, actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
		return
	}
	table, kind, err := h.service.Export(actor.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.RendererFor(format).Render(&buf, table); err != nil {
		h.logger.Error("export render failed", zap.String("kind", string(kind)), zap.String("format", string(format)), zap.Error(err))
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
		return
	}
	filename := format.Filename(strings.ReplaceAll(string(kind), "_", "-"), table.GeneratedAt)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (h *ViewHandler) writeState(c *gin.Context, state service.ViewState, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, response.Page(state.Page))
}

func writeResult(c *gin.Context, data interface{}, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}
