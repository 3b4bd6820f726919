package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tawhid3482/geniustutors-console/internal/middleware"
	"github.com/tawhid3482/geniustutors-console/internal/models"
	"github.com/tawhid3482/geniustutors-console/internal/service"
	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
	"github.com/tawhid3482/geniustutors-console/pkg/response"
)

// actorFromContext resolves the calling operator or writes a 401.
func actorFromContext(c *gin.Context) (*models.JWTClaims, service.Actor, bool) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, service.Actor{}, false
	}
	return claims, service.Actor{
		UserID:    claims.UserID,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}, true
}
