package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(origins []string, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.GET("/views", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.OPTIONS("/views", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/views", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAllowedOriginIsEchoed(t *testing.T) {
	w := serve([]string{"https://admin.geniustutors.com/"}, http.MethodGet, "https://Admin.GeniusTutors.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://Admin.GeniusTutors.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestUnknownOriginPreflightIsRejected(t *testing.T) {
	w := serve([]string{"https://admin.geniustutors.com"}, http.MethodOptions, "https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflightShortCircuits(t *testing.T) {
	w := serve(nil, http.MethodOptions, "http://localhost:3000")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
