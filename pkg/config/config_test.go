package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 300*time.Millisecond, cfg.Views.SearchDebounce)
	assert.Equal(t, 10, cfg.Views.DefaultPageSize)
	assert.Zero(t, cfg.Views.PollInterval)
	assert.Equal(t, 15*time.Minute, cfg.Taxonomy.CacheTTL)
	assert.True(t, cfg.Exports.Enabled)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SEARCH_DEBOUNCE", "450ms")
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("DEFAULT_PAGE_SIZE", "25")
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com/v2/")
	t.Setenv("ALLOWED_ORIGINS", "https://admin.example.com, ,https://ops.example.com")
	t.Setenv("AUDIT_WORKERS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 450*time.Millisecond, cfg.Views.SearchDebounce)
	assert.Equal(t, 30*time.Second, cfg.Views.PollInterval)
	assert.Equal(t, 25, cfg.Views.DefaultPageSize)
	assert.Equal(t, "https://api.example.com/v2", cfg.Backend.BaseURL)
	assert.Equal(t, []string{"https://admin.example.com", "https://ops.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 1, cfg.Audit.Workers)
}

func TestMalformedDurationFallsBack(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("SEARCH_DEBOUNCE", "soon")
	v.Set("DEFAULT_PAGE_SIZE", -4)

	cfg := fromViper(v)
	assert.Equal(t, 300*time.Millisecond, cfg.Views.SearchDebounce)
	assert.Equal(t, 10, cfg.Views.DefaultPageSize)
}
