package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTP.Addr)
	assert.Equal(t, "public", cfg.HTTP.StaticDir)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 600, cfg.HTTP.RateLimitRPM)
	assert.Equal(t, 10*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, 4, cfg.Probe.Concurrency)
	assert.Equal(t, "@every 5m", cfg.Schedule.Check)
	assert.Equal(t, "@every 19m", cfg.Schedule.Reload)
	assert.Equal(t, "services.yaml", cfg.ServicesFile)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.DB.QueryTimeout)
	assert.False(t, cfg.UsesPostgres())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":8080"
  allowed_origins: ["https://status.example.com"]
probe:
  timeout: 3s
  concurrency: 16
db:
  dsn: postgres://file@localhost/x
services_file: /etc/statuspage/services.yaml
`), 0o644))

	t.Setenv("DB_DSN", "postgres://env@localhost/y")
	t.Setenv("SCHEDULE_CHECK", "*/5 * * * *")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, []string{"https://status.example.com"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, 16, cfg.Probe.Concurrency)
	assert.Equal(t, "postgres://env@localhost/y", cfg.DB.DSN)
	assert.Equal(t, "*/5 * * * *", cfg.Schedule.Check)
	assert.Equal(t, "/etc/statuspage/services.yaml", cfg.ServicesFile)
	assert.True(t, cfg.UsesPostgres())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValuesAreAllReported(t *testing.T) {
	t.Setenv("PROBE_CONCURRENCY", "0")
	t.Setenv("PROBE_TIMEOUT", "0s")
	t.Setenv("SCHEDULE_RELOAD", "sometimes")

	_, err := Load("")
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
	assert.Contains(t, err.Error(), "schedule.reload")
}
