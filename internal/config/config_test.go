package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "medilink.events", cfg.Redis.Channel)
	assert.True(t, cfg.IsDevelopment())
	assert.NotEmpty(t, cfg.JWT.Secret)
}

func TestLoadFileAndEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	yaml := `
environment: production
server:
  port: 9000
database:
  host: db.internal
  name: hospital
jwt:
  secret: from-file
  expiry: 2h
`
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0o600))

	t.Setenv("MEDILINK_DATABASE_HOST", "db.override")
	t.Setenv("MEDILINK_SECURITY_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("MEDILINK_RATE_LIMIT_REQUESTS_PER_SECOND", "5")

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, "hospital", cfg.Database.Name)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Contains(t, cfg.Database.DSN(), "host=db.override")
}

func TestValidateRequiresSecretOutsideDevelopment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MEDILINK_ENVIRONMENT", "production")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
