package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tawhid3482/geniustutors-console/internal/models"
	"github.com/tawhid3482/geniustutors-console/internal/service"
)

func TestMenuHandlerScopesByRole(t *testing.T) {
	h := NewMenuHandler(service.NewMenuService(nil))

	c, rec := newContext(http.MethodGet, "/menu", "")
	withOperator(c, "u1", models.RoleModerator)
	h.Menu(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(rec).Data, &items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item["id"].(string))
	}
	assert.Equal(t, []string{"dashboard", "tutors", "tuition-requests", "demo-classes"}, ids)
	assert.Equal(t, "tutors", items[1]["icon"])
}
