package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tawhid3482/geniustutors-console/internal/models"
	"github.com/tawhid3482/geniustutors-console/pkg/response"
)

type menuService interface {
	Menu(role models.UserRole) []models.MenuItem
}

// MenuHandler serves the role-scoped navigation tree.
type MenuHandler struct {
	service menuService
}

// NewMenuHandler constructs the handler.
func NewMenuHandler(service menuService) *MenuHandler {
	return &MenuHandler{service: service}
}

// Menu godoc
// @Summary Navigation menu
// @Description Menu items visible to the caller's role
// @Tags Console
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /menu [get]
func (h *MenuHandler) Menu(c *gin.Context) {
	claims, _, ok := actorFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.service.Menu(claims.Role), nil)
}
