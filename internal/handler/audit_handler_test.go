package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tawhid3482/geniustutors-console/internal/models"
	"github.com/tawhid3482/geniustutors-console/pkg/jobs"
)

type fakeAuditSrv struct {
	filter models.AuditFilter
}

func (f *fakeAuditSrv) List(_ context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	f.filter = filter
	return []models.AuditLog{{ID: "a1", Action: models.AuditActionLogin, Resource: "auth"}}, nil
}

func (f *fakeAuditSrv) Stats() jobs.Stats { return jobs.Stats{Processed: 4} }

func TestAuditHandlerBindsFilter(t *testing.T) {
	srv := &fakeAuditSrv{}
	h := NewAuditHandler(srv)

	c, rec := newContext(http.MethodGet, "/audit-logs?resource=tutors&action=ENTITY_UPDATE&limit=10", "")
	h.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.AuditFilter{Resource: "tutors", Action: "ENTITY_UPDATE", Limit: 10}, srv.filter)
	assert.Contains(t, decode(rec).Meta, "queue")

	c, rec = newContext(http.MethodGet, "/audit-logs?limit=many", "")
	h.List(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
