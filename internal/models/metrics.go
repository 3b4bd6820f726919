package models

import "time"

// SystemMetrics is a lightweight snapshot of process counters for the ops endpoint.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	BackendCalls             uint64    `json:"backend_calls"`
	AverageBackendDurationMs float64   `json:"average_backend_duration_ms"`
	StaleResponses           uint64    `json:"stale_responses"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	ActiveViews              int64     `json:"active_views"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
