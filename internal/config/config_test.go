package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/invozy_test")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "30")
	t.Setenv("SMTP_PORT", "465")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	// Bare integers are read as seconds.
	assert.Equal(t, 30*time.Second, cfg.AccessTokenTTL)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/invozy_test")
	_, err = Load()
	require.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	t.Setenv("X_TTL", "90m")
	assert.Equal(t, 90*time.Minute, getDuration("X_TTL", time.Hour))

	t.Setenv("X_TTL", "banana")
	assert.Equal(t, time.Hour, getDuration("X_TTL", time.Hour))

	assert.Equal(t, time.Hour, getDuration("X_TTL_UNSET", time.Hour))
}
