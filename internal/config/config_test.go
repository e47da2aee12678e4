package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:8001", cfg.CatalogBaseURL)
	assert.Equal(t, 10*time.Minute, cfg.ViewCacheTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 60*time.Second, cfg.CacheMaxAge)
	assert.Len(t, cfg.PprofAllowedCIDRs, 5)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CATALOG_BASE_URL", "https://catalog.internal")
	t.Setenv("VIEW_CACHE_TTL", "90s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://catalog.internal", cfg.CatalogBaseURL)
	assert.Equal(t, 90*time.Second, cfg.ViewCacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"http port", "STOREFRONT_HTTP_PORT", "0", "invalid HTTP port"},
		{"redis port", "REDIS_PORT", "70000", "invalid Redis port"},
		{"catalog url", "CATALOG_BASE_URL", "catalog:8001", "CATALOG_BASE_URL"},
		{"retries", "CATALOG_MAX_RETRIES", "-1", "CATALOG_MAX_RETRIES"},
		{"breaker ratio", "CATALOG_BREAKER_FAILURE_RATIO", "1.5", "CATALOG_BREAKER_FAILURE_RATIO"},
		{"cache ttl", "VIEW_CACHE_TTL", "0s", "VIEW_CACHE_TTL"},
		{"rate limit", "RATE_LIMIT_BURST", "0", "rate limit"},
		{"sample rate", "OTEL_SAMPLE_RATE", "2.0", "OTEL_SAMPLE_RATE must be between 0.0 and 1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("CATALOG_TIMEOUT", "soon")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
}
