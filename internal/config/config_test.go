package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost:5432/campus")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("STATIC_DIR", "")
	t.Setenv("ENV", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, "./public", cfg.StaticDir)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadRequiresDSNAndSecret(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_DSN", "postgres://localhost:5432/campus")
	t.Setenv("JWT_SECRET", "")

	_, err = Load()
	assert.Error(t, err)
}
