package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablero-app/tablero/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.WSAddr)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, "json", cfg.WireFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TABLERO_WS_ADDR", "127.0.0.1:9001")
	t.Setenv("TABLERO_STORE", "redis")
	t.Setenv("TABLERO_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("TABLERO_REDIS_NAMESPACE", "team-x")
	t.Setenv("TABLERO_WIRE_FORMAT", "cbor")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9001", cfg.WSAddr)
	assert.Equal(t, "redis", cfg.Store)
	assert.Equal(t, "redis.internal:6379", cfg.RedisAddr)
	assert.Equal(t, "team-x", cfg.RedisNamespace)
	assert.Equal(t, "cbor", cfg.WireFormat)
}

func TestRejectsUnknownValues(t *testing.T) {
	t.Setenv("TABLERO_STORE", "mongodb")
	_, err := config.Load()
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestRejectsUnknownWireFormat(t *testing.T) {
	t.Setenv("TABLERO_WIRE_FORMAT", "xml")
	_, err := config.Load()
	assert.ErrorContains(t, err, "unknown wire format")
}
