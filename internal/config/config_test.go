package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("SB_BASE_ADDRESS", "http://plm:7001/tc/JsonRestServices")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsEnvProduction())
	assert.Equal(t, "JSESSIONID", cfg.SessionCookie)
	assert.Equal(t, "LoginResponse", cfg.LoginMarker)
	assert.True(t, cfg.ReusePriorSession)
	assert.Equal(t, 4, cfg.FanOutParallelism)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigin)
	assert.Equal(t, 168*time.Hour, cfg.JournalRetention)
	assert.Empty(t, cfg.PostgresDSN)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("SB_ENVIRONMENT", "dev")
	t.Setenv("SB_BASE_ADDRESS", "https://plm.example.com/tc/JsonRestServices")
	t.Setenv("SB_REUSE_PRIOR_SESSION", "false")
	t.Setenv("SB_FANOUT_PARALLELISM", "8")
	t.Setenv("SB_HTTP_TIMEOUT", "5s")
	t.Setenv("SB_ALLOWED_ORIGIN", "http://localhost:3000,https://portal.example.com")
	t.Setenv("SB_POSTGRES_DSN", "postgres://bridge@localhost/bridge")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.IsEnvProduction())
	assert.False(t, cfg.ReusePriorSession)
	assert.Equal(t, 8, cfg.FanOutParallelism)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []string{"http://localhost:3000", "https://portal.example.com"}, cfg.AllowedOrigin)
	assert.Equal(t, "postgres://bridge@localhost/bridge", cfg.PostgresDSN)
}

func TestLoadFromEnvRequiresBaseAddress(t *testing.T) {
	t.Setenv("SB_BASE_ADDRESS", "")
	require.NoError(t, os.Unsetenv("SB_BASE_ADDRESS"))

	_, err := LoadFromEnv()
	assert.Error(t, err)
}
