package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.Session.IdleTimeout)
	assert.Equal(t, 60*time.Second, cfg.Collaborator.Timeout)
	assert.Equal(t, "python3", cfg.Collaborator.Python)
	assert.Equal(t, "conversation.logged", cfg.Kafka.Topic)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "8081"
database:
  driver: postgres
  dsn: "host=db user=u dbname=d"
session:
  idle_timeout: 30m
collaborator:
  timeout: 5s
calendar:
  timezone: "UTC"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=u dbname=d", cfg.Database.DSN)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 5*time.Second, cfg.Collaborator.Timeout)
	assert.Equal(t, time.UTC, cfg.Calendar.Location())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "session:\n  secret: from-file\n")
	t.Setenv("TIGERSAI_SESSION_SECRET", "from-env")
	t.Setenv("TIGERSAI_DATABASE_DSN", "env-dsn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Session.Secret)
	assert.Equal(t, "env-dsn", cfg.Database.DSN)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsNonPositiveIdleTimeout(t *testing.T) {
	path := writeConfig(t, "session:\n  idle_timeout: 0s\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestCalendarLocation_FallsBackToLocal(t *testing.T) {
	assert.Equal(t, time.Local, CalendarConfig{}.Location())
	assert.Equal(t, time.Local, CalendarConfig{Timezone: "Not/AZone"}.Location())
}

func TestInit_PanicsOnBadPath(t *testing.T) {
	assert.Panics(t, func() { Init(filepath.Join(t.TempDir(), "absent.yaml")) })
}
