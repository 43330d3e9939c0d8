package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		configYAML  string
		env         map[string]string
		wantErr     bool
		errContains string
		validate    func(*testing.T, *Config)
	}{
		{
			name: "valid config with all fields",
			configYAML: `
gluetun:
  host: "vpn.local"
  port: 8001
  auth_type: "basic"
  username: "admin"
  password: "secret"
  request_timeout: 5

slskd:
  host: "soulseek.local"
  port: 5031
  api_key: "slskd-admin-key"
  https: true
  verify_ssl: false
  request_timeout: 8

check_interval: 15

health:
  file: "/tmp/status.json"

api:
  enabled: true
  port: 9090

logging:
  level: "debug"
  format: "json"
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "vpn.local", cfg.Gluetun.Host)
				assert.Equal(t, 8001, cfg.Gluetun.Port)
				assert.Equal(t, "basic", cfg.Gluetun.AuthType)
				assert.Equal(t, "admin", cfg.Gluetun.Username)
				assert.Equal(t, "http://vpn.local:8001", cfg.Gluetun.BaseURL())
				assert.Equal(t, 5*time.Second, cfg.Gluetun.Timeout())
				assert.Equal(t, "https://soulseek.local:5031", cfg.Slskd.BaseURL())
				assert.False(t, cfg.Slskd.VerifySSL)
				assert.Equal(t, 15*time.Second, cfg.Interval())
				assert.Equal(t, "/tmp/status.json", cfg.Health.File)
				assert.True(t, cfg.API.Enabled)
				assert.Equal(t, 9090, cfg.API.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "minimal config with defaults",
			configYAML: `
gluetun:
  api_key: "gluetun-key"
slskd:
  api_key: "slskd-key"
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "gluetun", cfg.Gluetun.Host)
				assert.Equal(t, 8000, cfg.Gluetun.Port)
				assert.Equal(t, "apikey", cfg.Gluetun.AuthType)
				assert.Equal(t, 10, cfg.Gluetun.RequestTimeout)
				assert.Equal(t, "slskd", cfg.Slskd.Host)
				assert.Equal(t, 5030, cfg.Slskd.Port)
				assert.Equal(t, "http://slskd:5030", cfg.Slskd.BaseURL())
				assert.Equal(t, 30, cfg.CheckInterval)
				assert.Equal(t, "/app/health/status.json", cfg.Health.File)
				assert.False(t, cfg.API.Enabled)
				assert.Equal(t, 8080, cfg.API.Port)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "environment overrides file",
			configYAML: `
gluetun:
  api_key: "file-key"
slskd:
  api_key: "slskd-key"
check_interval: 30
`,
			env: map[string]string{
				"SLSKSTICKY_GLUETUN_API_KEY": "env-key",
				"SLSKSTICKY_CHECK_INTERVAL":  "60",
				"SLSKSTICKY_SLSKD_HOST":      "other-slskd",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "env-key", cfg.Gluetun.APIKey)
				assert.Equal(t, 60, cfg.CheckInterval)
				assert.Equal(t, "other-slskd", cfg.Slskd.Host)
			},
		},
		{
			name: "environment only",
			env: map[string]string{
				"SLSKSTICKY_GLUETUN_AUTH_TYPE": "basic",
				"SLSKSTICKY_GLUETUN_USERNAME":  "user",
				"SLSKSTICKY_GLUETUN_PASSWORD":  "pass",
				"SLSKSTICKY_SLSKD_API_KEY":     "key",
				"SLSKSTICKY_SLSKD_HTTPS":       "true",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "basic", cfg.Gluetun.AuthType)
				assert.True(t, cfg.Slskd.HTTPS)
				assert.Equal(t, "https://slskd:5030", cfg.Slskd.BaseURL())
			},
		},
		{
			name: "missing gluetun api key",
			configYAML: `
slskd:
  api_key: "slskd-key"
`,
			wantErr:     true,
			errContains: "gluetun.api_key is required",
		},
		{
			name: "basic auth without credentials",
			configYAML: `
gluetun:
  auth_type: "basic"
slskd:
  api_key: "slskd-key"
`,
			wantErr:     true,
			errContains: "gluetun.username and gluetun.password",
		},
		{
			name: "invalid auth type",
			configYAML: `
gluetun:
  auth_type: "token"
slskd:
  api_key: "slskd-key"
`,
			wantErr:     true,
			errContains: "invalid gluetun.auth_type",
		},
		{
			name: "missing slskd api key",
			configYAML: `
gluetun:
  api_key: "gluetun-key"
`,
			wantErr:     true,
			errContains: "slskd.api_key is required",
		},
		{
			name: "negative check interval",
			configYAML: `
gluetun:
  api_key: "gluetun-key"
slskd:
  api_key: "slskd-key"
check_interval: -5
`,
			wantErr:     true,
			errContains: "check_interval must be a positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.configYAML != "" {
				path = writeConfig(t, tt.configYAML)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("SLSKSTICKY_GLUETUN_API_KEY", "gk")
	t.Setenv("SLSKSTICKY_SLSKD_API_KEY", "sk")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gk", cfg.Gluetun.APIKey)
}

func TestEnvToPath(t *testing.T) {
	assert.Equal(t, "gluetun.auth_type", envToPath("SLSKSTICKY_GLUETUN_AUTH_TYPE"))
	assert.Equal(t, "slskd.api_key", envToPath("SLSKSTICKY_SLSKD_API_KEY"))
	assert.Equal(t, "check_interval", envToPath("SLSKSTICKY_CHECK_INTERVAL"))
	assert.Equal(t, "api.enabled", envToPath("SLSKSTICKY_API_ENABLED"))
	assert.Equal(t, "logging.level", envToPath("SLSKSTICKY_LOGGING_LEVEL"))
}
