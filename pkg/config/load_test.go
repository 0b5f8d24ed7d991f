package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("testdata/nonexistent.env")

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.HTTPTimeout)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BANKDESK_API_BASE_URL", "https://bank.example.com/api")
	t.Setenv("BANKDESK_API_HTTP_TIMEOUT", "3s")
	t.Setenv("BANKDESK_LOG_FORMAT", "json")

	cfg, err := Load("testdata/nonexistent.env")

	require.NoError(t, err)
	assert.Equal(t, "https://bank.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.HTTPTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
}
