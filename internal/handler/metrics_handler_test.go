package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]Pinger{"database": stubPinger{}, "redis": stubPinger{}}, nil)
	c, rec := newContext(http.MethodGet, "/ready", "")
	h.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewMetricsHandler(nil, map[string]Pinger{"database": stubPinger{}, "redis": stubPinger{err: errors.New("refused")}}, nil)
	c, rec = newContext(http.MethodGet, "/ready", "")
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "down", body.Checks["redis"])
	assert.Equal(t, "up", body.Checks["database"])
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	h := NewMetricsHandler(nil, nil, nil)
	c, rec := newContext(http.MethodGet, "/metrics", "")
	h.Prometheus(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
