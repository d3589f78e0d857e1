package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, BackendMemory, cfg.CartBackend)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 5*time.Minute, cfg.CatalogTTL)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location().String())
}

func TestOverrides(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("BACKEND_TIMEOUT", "3")
	t.Setenv("CATALOG_TTL", "90s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.com, https://b.com,")
	t.Setenv("CART_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, 3*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 90*time.Second, cfg.CatalogTTL)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, cfg.AllowedOrigins)
	assert.Equal(t, BackendRedis, cfg.CartBackend)
	assert.True(t, cfg.CookieSecure)
}

func TestValidate(t *testing.T) {
	cases := map[string]map[string]string{
		"bad log level":    {"LOG_LEVEL": "loud"},
		"redis w/o addr":   {"CART_BACKEND": "redis"},
		"mongo w/o uri":    {"CART_BACKEND": "mongo"},
		"unknown backend":  {"CART_BACKEND": "sqlite"},
		"unknown timezone": {"TIMEZONE": "Mars/Olympus"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
