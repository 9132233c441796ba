package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("ANALYTICS_WINDOW_DAYS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 30, cfg.AnalyticsWindowDays)
	assert.Contains(t, cfg.DSN(), "sslmode=disable")
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("ANALYTICS_WINDOW_DAYS", "14")
	t.Setenv("ENV", "prod")
	t.Setenv("DEBUG", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 14, cfg.AnalyticsWindowDays)
	assert.Equal(t, "PROD", cfg.Env)
	assert.False(t, cfg.Debug)
}

func TestLoadConfigRejectsUnknownStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigWindowFallback(t *testing.T) {
	t.Setenv("STORE_DRIVER", StoreMemory)
	t.Setenv("ANALYTICS_WINDOW_DAYS", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.AnalyticsWindowDays)
}
