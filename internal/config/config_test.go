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

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	path := writeConfig(t, "server:\n  port: 8080\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "onconet_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "s3cret", cfg.Session.Secret)
	assert.Equal(t, 5*time.Second, cfg.Geocoding.Timeout)
	assert.Equal(t, 365*24*time.Hour, cfg.Audit.Retention())
	assert.False(t, cfg.Mail.Enabled())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("GOOGLE_MAPS_API_KEY", "maps-key")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/onconet?sslmode=disable")
	t.Setenv("ONCONET_DATABASE_DRIVER", "postgres")
	t.Setenv("ONCONET_LOG_LEVEL", "debug")
	path := writeConfig(t, "log:\n  level: warn\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/onconet?sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "maps-key", cfg.Geocoding.APIKey)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigRequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	path := writeConfig(t, "session:\n  secret: \"\"\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "session secret")
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 5000},
		Database: DatabaseConfig{Driver: "sqlite"},
		Session:  SessionConfig{Store: SessionStoreMemory, Secret: "x", TTL: time.Hour},
	}
	assert.ErrorContains(t, cfg.Validate(), "unknown database driver")

	cfg.Database.Driver = DriverPostgres
	assert.NoError(t, cfg.Validate())
}

func TestDSNFromParts(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}
