package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadUsesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10000, cfg.LRUSize)
	assert.Equal(t, 5*time.Second, cfg.L1TTL)
	assert.Equal(t, uint8(1), cfg.Routes)
	assert.Equal(t, 12, cfg.TxKeySize)
	assert.Zero(t, cfg.BloomExpected)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("ADDR", ":18080")
	t.Setenv("ROUTES", "24")
	t.Setenv("TX_KEY_SIZE", "14")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":18080", cfg.Addr)
	assert.Equal(t, uint8(24), cfg.Routes)
	assert.Equal(t, 14, cfg.TxKeySize)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero routes", "ROUTES", "0"},
		{"too many routes", "ROUTES", "129"},
		{"routes not a number", "ROUTES", "many"},
		{"short tx key", "TX_KEY_SIZE", "9"},
		{"long tx key", "TX_KEY_SIZE", "20"},
		{"empty lru", "LRU_SIZE", "0"},
		{"zero l1 ttl", "L1_TTL", "0s"},
		{"l1 ttl above cache ttl", "L1_TTL", "10m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestBloomRateChecked(t *testing.T) {
	t.Setenv("BLOOM_EXPECTED", "1000")
	t.Setenv("BLOOM_FP_RATE", "1.5")
	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv("BLOOM_FP_RATE", "0.001")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, uint(1000), cfg.BloomExpected)
}

func TestSlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	} {
		assert.Equal(t, want, Config{LogLevel: in}.SlogLevel(), in)
	}
}
