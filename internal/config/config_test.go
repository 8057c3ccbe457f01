package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraconfig "github.com/jonesrussell/intelsleuth/infrastructure/config"
	"github.com/jonesrussell/intelsleuth/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "intelsleuth", cfg.Service.Name)
	assert.Equal(t, 5000, cfg.Service.Port)
	assert.Equal(t, 20*time.Second, cfg.Service.SearchDeadline)
	assert.Equal(t, 10, cfg.Service.MaxResultsPerSource)
	assert.Equal(t, 3, cfg.Webhook.MaxAttempts)
	assert.Equal(t, 15*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "intelsleuth", cfg.Database.Database)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
service:
  port: 8088
  search_deadline: 5s
database:
  enabled: true
  host: db.internal
  persist_results: true
sources:
  hunter_api_key: from-file
webhook:
  default_url: https://hooks.example.com/osint
rate_limit:
  enabled: true
  requests_per_minute: 10
`)
	t.Setenv("HUNTER_API_KEY", "from-env")
	t.Setenv("POSTGRES_PORT", "6543")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Service.Port)
	assert.Equal(t, 5*time.Second, cfg.Service.SearchDeadline)
	assert.Equal(t, "from-env", cfg.Sources.HunterAPIKey)
	assert.Equal(t, "https://hooks.example.com/osint", cfg.Webhook.DefaultURL)
	assert.True(t, cfg.Database.PersistResults)

	conn := cfg.Database.Connection()
	assert.Equal(t, "db.internal", conn.Host)
	assert.Equal(t, 6543, conn.Port)
	assert.Equal(t, "postgres://postgres:@db.internal:6543/intelsleuth?sslmode=disable", conn.URL())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{
			name:   "port out of range",
			mutate: func(c *config.Config) { c.Service.Port = 70000 },
			field:  "service.port",
		},
		{
			name:   "bad webhook url",
			mutate: func(c *config.Config) { c.Webhook.DefaultURL = "ftp://hooks" },
			field:  "webhook.default_url",
		},
		{
			name:   "unknown log level",
			mutate: func(c *config.Config) { c.Logging.Level = "loud" },
			field:  "logging.level",
		},
		{
			name: "database enabled without host",
			mutate: func(c *config.Config) {
				c.Database.Enabled = true
				c.Database.Host = ""
			},
			field: "database.host",
		},
		{
			name:   "negative deadline",
			mutate: func(c *config.Config) { c.Service.SearchDeadline = -time.Second },
			field:  "service.search_deadline",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
			require.NoError(t, err)
			tc.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)

			var verr *infraconfig.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}
