package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tawhid3482/geniustutors-console/internal/models"
	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
	"github.com/tawhid3482/geniustutors-console/pkg/jobs"
	"github.com/tawhid3482/geniustutors-console/pkg/response"
)

type auditService interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
	Stats() jobs.Stats
}

// AuditHandler lists recorded operator actions.
type AuditHandler struct {
	service auditService
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(service auditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List godoc
// @Summary Audit trail
// @Tags Audit
// @Produce json
// @Param user_id query string false "Operator ID"
// @Param resource query string false "Resource"
// @Param action query string false "Action"
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {object} response.Envelope
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	var filter models.AuditFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid audit filter"))
		return
	}
	logs, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil, map[string]interface{}{"queue": h.service.Stats()})
}
