package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/intelsleuth/infrastructure/config"
)

type sample struct {
	Name    string        `yaml:"name"    env:"SAMPLE_NAME"`
	Port    int           `yaml:"port"    env:"SAMPLE_PORT"`
	Timeout time.Duration `yaml:"timeout" env:"SAMPLE_TIMEOUT"`
	Enabled bool          `yaml:"enabled" env:"SAMPLE_ENABLED"`
	Nested  struct {
		Hosts []string `yaml:"hosts" env:"SAMPLE_HOSTS"`
	} `yaml:"nested"`
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_ReadsYAML(t *testing.T) {
	path := writeFile(t, "name: svc\nport: 9000\ntimeout: 2s\nnested:\n  hosts: [a, b]\n")

	cfg, err := config.Load[sample](path)
	require.NoError(t, err)

	assert.Equal(t, "svc", cfg.Name)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"a", "b"}, cfg.Nested.Hosts)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "name: svc\nport: 9000\n")
	t.Setenv("SAMPLE_PORT", "9100")
	t.Setenv("SAMPLE_TIMEOUT", "750ms")
	t.Setenv("SAMPLE_ENABLED", "yes")
	t.Setenv("SAMPLE_HOSTS", "x, y ,z")

	cfg, err := config.Load[sample](path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, []string{"x", "y", "z"}, cfg.Nested.Hosts)
}

func TestLoad_MissingFileIsTolerated(t *testing.T) {
	cfg, err := config.Load[sample](filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Name)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "name: [unterminated\n")

	_, err := config.Load[sample](path)
	assert.Error(t, err)
}

func TestLoadWithDefaults_EnvWinsOverDefaults(t *testing.T) {
	path := writeFile(t, "name: svc\n")
	t.Setenv("SAMPLE_PORT", "7000")

	cfg, err := config.LoadWithDefaults(path, func(c *sample) {
		if c.Port == 0 {
			c.Port = 8080
		}
		c.Timeout = time.Second
	})
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, time.Second, cfg.Timeout)
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv(config.ConfigPathEnv, "/etc/intelsleuth.yml")
	assert.Equal(t, "/etc/intelsleuth.yml", config.GetConfigPath("config.yml"))
}

func TestValidateOptionalURL(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "empty", raw: "", wantErr: false},
		{name: "https", raw: "https://hooks.example.com/x", wantErr: false},
		{name: "relative", raw: "/hook", wantErr: true},
		{name: "ftp", raw: "ftp://example.com", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := config.ValidateOptionalURL("webhook.default_url", tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
