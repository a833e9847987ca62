package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/stocksim")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("API_KEY", "pk_test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "pk_test", cfg.APIKey)
	require.Equal(t, "https://cloud.iexapis.com/stable", cfg.QuoteAPIURL)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/stocksim")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("API_KEY", "")

	_, err := Load()
	require.ErrorContains(t, err, "API_KEY")
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("API_KEY", "pk_test")

	_, err := Load()
	require.ErrorContains(t, err, "DATABASE_URL")
}
