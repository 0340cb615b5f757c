package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)

	require.Equal(t, 4, cfg.Activation.CodeLength)
	require.Equal(t, 15*time.Minute, cfg.Activation.TTL)
	require.Equal(t, "@hourly", cfg.Activation.CleanupSchedule)

	require.Equal(t, 8, cfg.Password.MinLength)
	require.True(t, cfg.Password.RequireUpper)
	require.True(t, cfg.Password.RequireLower)
	require.True(t, cfg.Password.RequireDigit)

	require.False(t, cfg.Email.SMTP.Enabled)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.True(t, cfg.Monitoring.Health.Enabled)
}

func TestLoadConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	contents := []byte(`
server:
  port: 9000
  log_level: debug
activation:
  code_length: 6
  ttl: 60s
database:
  driver: postgres
  postgres:
    host: db.internal
    port: 5433
    database: signupd
    username: signupd
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), contents, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, 6, cfg.Activation.CodeLength)
	require.Equal(t, time.Minute, cfg.Activation.TTL)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SIGNUPD_SERVER_PORT", "9100")
	t.Setenv("SIGNUPD_ACTIVATION_TTL", "5m")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, 5*time.Minute, cfg.Activation.TTL)
}

func TestSMTPSettingsConversion(t *testing.T) {
	cfg := EmailConfig{SMTP: SMTPConfig{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    465,
		From:    "noreply@example.com",
		UseTLS:  true,
		Timeout: 3 * time.Second,
	}}

	settings := cfg.SMTPSettings()
	require.True(t, settings.Enabled)
	require.Equal(t, "smtp.example.com", settings.Host)
	require.Equal(t, 465, settings.Port)
	require.Equal(t, 3*time.Second, settings.Timeout)
}

func TestConfigureLogging(t *testing.T) {
	require.NoError(t, ConfigureLogging(""))
	require.NoError(t, ConfigureLogging("debug"))
	require.NoError(t, ConfigureLogging("nonsense"))
}
