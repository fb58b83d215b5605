package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)
	assert.Empty(t, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, DefaultDSN, cfg.Database.DSN)
	assert.Equal(t, 3*time.Second, cfg.Database.Timeout)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 20.0, cfg.RateLimit.RPS)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.TrustProxy)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_EnvOverride(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("DB_DSN", "sqlite::memory:")
	t.Setenv("DB_TIMEOUT", "750ms")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://books.example.com ,")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("TRUST_PROXY", "true")

	cfg := NewConfig()

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "sqlite::memory:", cfg.Database.DSN)
	assert.Equal(t, 750*time.Millisecond, cfg.Database.Timeout)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, []string{"http://localhost:3000", "https://books.example.com"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.RateLimit.TrustProxy)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := NewConfig()
	cfg.Database.DSN = ""
	cfg.Database.Timeout = 0
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
	assert.Contains(t, err.Error(), "DB_TIMEOUT")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, ".env")

	if err := os.WriteFile(p, []byte("DB_DSN=from_file\nLOG_LEVEL=debug\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	t.Setenv("DB_DSN", "from_env")
	t.Chdir(tmp)
	t.Cleanup(func() { _ = os.Unsetenv("LOG_LEVEL") })

	LoadEnvFiles()

	if got := os.Getenv("DB_DSN"); got != "from_env" {
		t.Fatalf("expected existing env to win, got %q", got)
	}
	if got := os.Getenv("LOG_LEVEL"); got != "debug" {
		t.Fatalf("expected .env to fill missing vars, got %q", got)
	}
}
