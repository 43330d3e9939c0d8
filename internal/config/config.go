package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment variable overrides
const EnvPrefix = "SLSKSTICKY_"

// Config represents the complete daemon configuration
type Config struct {
	Gluetun GluetunConfig `koanf:"gluetun"`
	Slskd   SlskdConfig   `koanf:"slskd"`

	// CheckInterval is the polling interval in seconds
	CheckInterval int `koanf:"check_interval"`

	Health  HealthConfig  `koanf:"health"`
	API     APIConfig     `koanf:"api"`
	Logging LoggingConfig `koanf:"logging"`
}

// GluetunConfig holds gluetun control server settings
type GluetunConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	AuthType string `koanf:"auth_type"` // apikey or basic
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	APIKey   string `koanf:"api_key"`

	// RequestTimeout bounds each HTTP call, in seconds
	RequestTimeout int `koanf:"request_timeout"`
}

// SlskdConfig holds slskd API settings
type SlskdConfig struct {
	Host      string `koanf:"host"`
	Port      int    `koanf:"port"`
	APIKey    string `koanf:"api_key"` // Administrator role required
	HTTPS     bool   `koanf:"https"`
	VerifySSL bool   `koanf:"verify_ssl"`

	RequestTimeout int `koanf:"request_timeout"`
}

// HealthConfig holds health sink configuration
type HealthConfig struct {
	File string `koanf:"file"`
}

// APIConfig holds the optional status HTTP server configuration
type APIConfig struct {
	Enabled bool `koanf:"enabled"`
	Port    int  `koanf:"port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Interval returns the polling interval as a duration
func (c *Config) Interval() time.Duration {
	return time.Duration(c.CheckInterval) * time.Second
}

// BaseURL returns the gluetun control server base URL
func (g *GluetunConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", g.Host, g.Port)
}

// BaseURL returns the slskd API base URL
func (s *SlskdConfig) BaseURL() string {
	scheme := "http"
	if s.HTTPS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, s.Host, s.Port)
}

// Timeout returns the per-request timeout as a duration
func (g *GluetunConfig) Timeout() time.Duration {
	return time.Duration(g.RequestTimeout) * time.Second
}

// Timeout returns the per-request timeout as a duration
func (s *SlskdConfig) Timeout() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// Load loads configuration from an optional YAML file and the environment.
// Environment variables take precedence over the file.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("loading config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envToPath), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// envToPath maps SLSKSTICKY_GLUETUN_AUTH_TYPE to gluetun.auth_type,
// SLSKSTICKY_CHECK_INTERVAL to check_interval, and so on. Only the
// leading section name becomes a path separator; the remainder of the
// key keeps its underscores.
func envToPath(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range []string{"gluetun", "slskd", "health", "api", "logging"} {
		if strings.HasPrefix(s, section+"_") {
			return section + "." + strings.TrimPrefix(s, section+"_")
		}
	}
	return s
}

// applyDefaults sets default values for optional fields
func applyDefaults(cfg *Config) {
	if cfg.Gluetun.Host == "" {
		cfg.Gluetun.Host = "gluetun"
	}
	if cfg.Gluetun.Port == 0 {
		cfg.Gluetun.Port = 8000
	}
	if cfg.Gluetun.AuthType == "" {
		cfg.Gluetun.AuthType = "apikey"
	}
	if cfg.Gluetun.RequestTimeout == 0 {
		cfg.Gluetun.RequestTimeout = 10
	}

	if cfg.Slskd.Host == "" {
		cfg.Slskd.Host = "slskd"
	}
	if cfg.Slskd.Port == 0 {
		cfg.Slskd.Port = 5030
	}
	if cfg.Slskd.RequestTimeout == 0 {
		cfg.Slskd.RequestTimeout = 10
	}

	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = 30
	}

	if cfg.Health.File == "" {
		cfg.Health.File = "/app/health/status.json"
	}

	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// validate checks the configuration for required fields and consistency
func validate(cfg *Config) error {
	switch cfg.Gluetun.AuthType {
	case "apikey":
		if cfg.Gluetun.APIKey == "" {
			return fmt.Errorf("gluetun.api_key is required for apikey auth")
		}
	case "basic":
		if cfg.Gluetun.Username == "" || cfg.Gluetun.Password == "" {
			return fmt.Errorf("gluetun.username and gluetun.password are required for basic auth")
		}
	default:
		return fmt.Errorf("invalid gluetun.auth_type: %s (must be 'apikey' or 'basic')", cfg.Gluetun.AuthType)
	}

	if cfg.Slskd.APIKey == "" {
		return fmt.Errorf("slskd.api_key is required (Administrator role)")
	}

	if cfg.CheckInterval < 1 {
		return fmt.Errorf("check_interval must be a positive number of seconds")
	}

	if cfg.Gluetun.RequestTimeout < 1 || cfg.Slskd.RequestTimeout < 1 {
		return fmt.Errorf("request_timeout must be a positive number of seconds")
	}

	return nil
}
