package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Backend  BackendConfig
	Views    ViewsConfig
	Taxonomy TaxonomyConfig
	Audit    AuditConfig
	Exports  ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// BackendConfig points at the tutoring platform REST API.
type BackendConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// ViewsConfig tunes list view sessions.
type ViewsConfig struct {
	SearchDebounce  time.Duration
	DefaultPageSize int
	PollInterval    time.Duration
	IdleTTL         time.Duration
	ReapInterval    time.Duration
}

// TaxonomyConfig controls caching of categories and districts.
type TaxonomyConfig struct {
	CacheTTL time.Duration
}

// AuditConfig sizes the asynchronous audit writer.
type AuditConfig struct {
	Workers int
	Retries int
}

// ExportsConfig gates CSV/PDF downloads of filtered views.
type ExportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Backend = BackendConfig{
		BaseURL: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		Token:   v.GetString("BACKEND_TOKEN"),
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 10*time.Second),
	}

	pageSize := v.GetInt("DEFAULT_PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 10
	}
	cfg.Views = ViewsConfig{
		SearchDebounce:  parseDuration(v.GetString("SEARCH_DEBOUNCE"), 300*time.Millisecond),
		DefaultPageSize: pageSize,
		PollInterval:    parseDuration(v.GetString("POLL_INTERVAL"), 0),
		IdleTTL:         parseDuration(v.GetString("VIEW_IDLE_TTL"), 30*time.Minute),
		ReapInterval:    parseDuration(v.GetString("VIEW_REAP_INTERVAL"), time.Minute),
	}

	cfg.Taxonomy = TaxonomyConfig{
		CacheTTL: parseDuration(v.GetString("TAXONOMY_CACHE_TTL"), 15*time.Minute),
	}

	workers := v.GetInt("AUDIT_WORKERS")
	if workers <= 0 {
		workers = 1
	}
	cfg.Audit = AuditConfig{
		Workers: workers,
		Retries: v.GetInt("AUDIT_RETRIES"),
	}

	cfg.Exports = ExportsConfig{Enabled: v.GetBool("ENABLE_EXPORTS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "geniustutors_console")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:5000/api")
	v.SetDefault("BACKEND_TOKEN", "")
	v.SetDefault("BACKEND_TIMEOUT", "10s")

	v.SetDefault("SEARCH_DEBOUNCE", "300ms")
	v.SetDefault("DEFAULT_PAGE_SIZE", 10)
	v.SetDefault("POLL_INTERVAL", "")
	v.SetDefault("VIEW_IDLE_TTL", "30m")
	v.SetDefault("VIEW_REAP_INTERVAL", "1m")

	v.SetDefault("TAXONOMY_CACHE_TTL", "15m")
	v.SetDefault("AUDIT_WORKERS", 2)
	v.SetDefault("AUDIT_RETRIES", 3)
	v.SetDefault("ENABLE_EXPORTS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
