package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tawhid3482/geniustutors-console/internal/middleware"
	"github.com/tawhid3482/geniustutors-console/internal/models"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Meta       map[string]interface{} `json:"meta"`
	Pagination map[string]interface{} `json:"pagination"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, rec
}

func withOperator(c *gin.Context, id string, role models.UserRole) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: id, Role: role, Email: id + "@geniustutors.test"})
}

func decode(rec *httptest.ResponseRecorder) responseEnvelope {
	var env responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return env
}
