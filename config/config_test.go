package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fridgechef/backend/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_NAME", "fridgechef_test")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := config.Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
		assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.Gemini.BaseURL)
		assert.Equal(t, 5, cfg.Gemini.MaxRetries)
		assert.Equal(t, 5*time.Second, cfg.Gemini.RetryBaseDelay)
		assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SERVER_PORT", "9000")
		t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
		t.Setenv("GEMINI_MAX_RETRIES", "3")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, "9000", cfg.Server.Port)
		assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
		assert.Equal(t, 3, cfg.Gemini.MaxRetries)
	})

	t.Run("renders the database DSN", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("DB_PASSWORD", "hunter2")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t,
			"host=db.internal port=5432 user=postgres password=hunter2 dbname=fridgechef_test sslmode=disable",
			cfg.Database.DSN())
	})

	t.Run("reads secrets from files", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("JWT_SECRET", "")

		dir := t.TempDir()
		secretPath := filepath.Join(dir, "jwt_secret")
		require.NoError(t, os.WriteFile(secretPath, []byte("file-secret\n"), 0600))
		t.Setenv("JWT_SECRET_FILE", secretPath)

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	})

	t.Run("missing JWT secret fails validation", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("JWT_SECRET", "")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("missing Gemini key is tolerated", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GEMINI_API_KEY", "")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Empty(t, cfg.Gemini.APIKey)
	})
}
