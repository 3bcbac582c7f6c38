package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_BASE_URL", "https://portal.example.com/")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("MESSAGING_ENABLED", "false")
}

func TestNewDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "https://portal.example.com", cfg.App.BaseURL)
	assert.Equal(t, cfg.App.BaseURL, cfg.App.FrontendURL)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "uploads", cfg.Storage.Dir)
	assert.Equal(t, 10, cfg.Storage.MaxFiles)
	assert.Equal(t, "noop", cfg.Cache.Driver)
	assert.Equal(t, "noop", cfg.Messaging.Driver)
	assert.Equal(t, "admin", cfg.Auth.AdminRole)
	assert.Equal(t, "buyerdesk", cfg.Mongo.Database)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
	assert.Equal(t, "/metrics", cfg.Observability.PrometheusPath)
}

func TestNewRequiresBaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_BASE_URL", "")

	_, err := New()
	assert.ErrorContains(t, err, "APP_BASE_URL")
}

func TestNewRequiresJWTSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	_, err := New()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestNewRejectsUnknownStorageDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", "ftp")

	_, err := New()
	assert.ErrorContains(t, err, "unsupported storage driver")
}

func TestNewNormalisesObservability(t *testing.T) {
	setRequired(t)
	t.Setenv("OBS_LOG_LEVEL", " DEBUG ")
	t.Setenv("OBS_PROMETHEUS_PATH", "prom")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, "/prom", cfg.Observability.PrometheusPath)
}

func TestGetEnvAsStringSlice(t *testing.T) {
	t.Setenv("TEST_BROKERS", "a:9092, ,b:9092")
	assert.Equal(t, []string{"a:9092", "b:9092"}, getEnvAsStringSlice("TEST_BROKERS", nil))
	assert.Equal(t, []string{"x"}, getEnvAsStringSlice("TEST_MISSING_BROKERS", []string{"x"}))
}
