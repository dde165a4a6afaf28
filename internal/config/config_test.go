package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ANON_KEY", "anon")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("API_PREFIX", "/v1/")

	cfg := Load()
	assert.Equal(t, "/v1", cfg.APIPrefix)
	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, int64(10<<20), cfg.Media.MaxBytes)
	assert.Equal(t, 365*24*time.Hour, cfg.Media.URLTTL)
	assert.Equal(t, "secret", cfg.Media.SigningKey, "signing key falls back to the jwt secret")
	assert.False(t, cfg.AMQP.Enabled)
}

func TestRedisAddrFromHostPort(t *testing.T) {
	t.Setenv("REDIS_ADDR", "ignored:1")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	assert.Equal(t, "cache:6380", loadRedisConfig().Addr)
}

func TestRateLimitNormalization(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	rl := LoadRateLimitConfig()
	assert.Equal(t, 1, rl.Capacity)
	assert.Equal(t, 10*time.Second, rl.TTL)
}

func TestParseMethods(t *testing.T) {
	m := parseMethods("get, Head ,")
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, m)
}
