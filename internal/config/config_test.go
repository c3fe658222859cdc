package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, "06:00", cfg.Scheduler.DailyRunTime)
	assert.Equal(t, 24*time.Hour, cfg.Auth.GetTokenTTL())
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm.yaml")
	content := `
server:
  port: "8080"
database:
  type: postgres
  postgres:
    host: pg
    port: 6543
auth:
  jwt_secret: s3cret
scheduler:
  payment_due_days: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "pg", cfg.Database.Postgres.Host)
	assert.Equal(t, 6543, cfg.Database.Postgres.Port)
	assert.Equal(t, 3, cfg.Scheduler.PaymentDueDays)
	// untouched keys keep their defaults
	assert.Equal(t, 30, cfg.Scheduler.ContractExpiryDays)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DB_HOST", "mysql.internal")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("JWT_SECRET", "from-env")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "mysql.internal", cfg.Database.MySQL.Host)
	assert.Equal(t, 3307, cfg.Database.MySQL.Port)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate(), "release mode without a secret")

	cfg.Auth.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Type = "oracle"
	assert.Error(t, cfg.Validate())

	cfg.Database.Type = "sqlite"
	cfg.Database.MaxOpenConns = 0
	assert.Error(t, cfg.Validate())
}
