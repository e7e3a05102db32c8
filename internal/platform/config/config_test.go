package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 120*time.Second, cfg.SeatLockRefreshInterval)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Empty(t, cfg.LeadOwners)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "JWT_SECRET=from-file\nLEAD_OWNERS= ana, budi ,,citra\nSEATLOCK_REFRESH_INTERVAL=90s\nBACKEND_BASE_URL=http://backend:8000/\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv does not override variables that are already set.
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("LEAD_OWNERS", "")
	os.Unsetenv("LEAD_OWNERS")
	t.Setenv("SEATLOCK_REFRESH_INTERVAL", "")
	os.Unsetenv("SEATLOCK_REFRESH_INTERVAL")
	t.Setenv("BACKEND_BASE_URL", "")
	os.Unsetenv("BACKEND_BASE_URL")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, []string{"ana", "budi", "citra"}, cfg.LeadOwners)
	assert.Equal(t, 90*time.Second, cfg.SeatLockRefreshInterval)
	assert.Equal(t, "http://backend:8000", cfg.BackendBaseURL)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SESSION_IDLE_TIMEOUT", "soon")

	_, err := Load("")
	assert.ErrorContains(t, err, "SESSION_IDLE_TIMEOUT")
}
