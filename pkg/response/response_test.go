package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/tawhid3482/geniustutors-console/pkg/errors"
	"github.com/tawhid3482/geniustutors-console/pkg/pagination"
)

func TestErrorMapsAppErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, appErrors.Clone(appErrors.ErrBackendRejected, "Tutor already assigned"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "BACKEND_REJECTED", body.Error.Code)
	assert.Equal(t, "Tutor already assigned", body.Error.Message)
	assert.True(t, c.IsAborted())
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestPageMetadata(t *testing.T) {
	meta := Page(pagination.Paginate(25, 3, 10))
	assert.Equal(t, 3, meta.Page)
	assert.Equal(t, 25, meta.TotalCount)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 21, meta.StartItem)
	assert.Equal(t, 25, meta.EndItem)
	assert.Equal(t, []int{1, 2, 3}, meta.Visible)
}
