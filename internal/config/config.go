// Package config holds the IntelSleuth service configuration.
package config

import (
	"errors"
	"time"

	infraconfig "github.com/jonesrussell/intelsleuth/infrastructure/config"
	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/infrastructure/profiling"
	infraredis "github.com/jonesrussell/intelsleuth/infrastructure/redis"
	"github.com/jonesrussell/intelsleuth/internal/querylog"
)

// DefaultPath is the config file used when CONFIG_PATH is unset.
const DefaultPath = "config.yml"

// Default configuration values.
const (
	defaultServiceName         = "intelsleuth"
	defaultServicePort         = 5000
	defaultVersion             = "1.0.0"
	defaultSearchDeadline      = 20 * time.Second
	defaultMaxResultsPerSource = 10
	defaultUserAgent           = "IntelSleuth/1.0"

	defaultDBHost     = "localhost"
	defaultDBPort     = 5432
	defaultDBName     = "intelsleuth"
	defaultDBUser     = "postgres"
	defaultDBSSLMode  = "disable"
	defaultBufferSize = 256

	defaultRedisAddress = "localhost:6379"

	defaultWebhookTimeout        = 15 * time.Second
	defaultWebhookAttempts       = 3
	defaultWebhookInitialBackoff = 500 * time.Millisecond

	defaultRequestsPerMinute = 60
	defaultRateLimitWindow   = time.Minute
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig     `yaml:"service"`
	Database  DatabaseConfig    `yaml:"database"`
	Redis     infraredis.Config `yaml:"redis"`
	Logging   logger.Config     `yaml:"logging"`
	Sources   SourcesConfig     `yaml:"sources"`
	Webhook   WebhookConfig     `yaml:"webhook"`
	RateLimit RateLimitConfig   `yaml:"rate_limit"`
	Profiling profiling.Config  `yaml:"profiling"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name                string        `yaml:"name"`
	Version             string        `yaml:"version"`
	Port                int           `env:"INTELSLEUTH_PORT"            yaml:"port"`
	Debug               bool          `env:"APP_DEBUG"                   yaml:"debug"`
	SearchDeadline      time.Duration `env:"INTELSLEUTH_SEARCH_DEADLINE" yaml:"search_deadline"`
	MaxResultsPerSource int           `yaml:"max_results_per_source"`
	UserAgent           string        `yaml:"user_agent"`
	CORSOrigins         []string      `env:"CORS_ORIGINS"                yaml:"cors_origins"`
}

// DatabaseConfig holds the PostgreSQL query log configuration.
type DatabaseConfig struct {
	Enabled        bool   `env:"POSTGRES_ENABLED"  yaml:"enabled"`
	Host           string `env:"POSTGRES_HOST"     yaml:"host"`
	Port           int    `env:"POSTGRES_PORT"     yaml:"port"`
	User           string `env:"POSTGRES_USER"     yaml:"user"`
	Password       string `env:"POSTGRES_PASSWORD" yaml:"password"`
	Database       string `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode        string `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	PersistResults bool   `yaml:"persist_results"`
	BufferSize     int    `yaml:"buffer_size"`
}

// Connection returns the querylog connection settings.
func (d *DatabaseConfig) Connection() querylog.DBConfig {
	return querylog.DBConfig{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		DBName:   d.Database,
		SSLMode:  d.SSLMode,
	}
}

// SourcesConfig holds upstream API credentials and overrides. Collectors
// whose key is empty are not registered.
type SourcesConfig struct {
	HunterAPIKey string `env:"HUNTER_API_KEY" yaml:"hunter_api_key"`
	HIBPAPIKey   string `env:"HIBP_API_KEY"   yaml:"hibp_api_key"`
	IPInfoToken  string `env:"IPINFO_TOKEN"   yaml:"ipinfo_token"`
	WhoisServer  string `env:"WHOIS_SERVER"   yaml:"whois_server"`
	// Social enables username probes against public profile pages.
	Social bool `env:"SOCIAL_SEARCH_ENABLED" yaml:"social"`
}

// WebhookConfig controls result delivery.
type WebhookConfig struct {
	DefaultURL     string        `env:"WEBHOOK_URL" yaml:"default_url"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
}

// RateLimitConfig limits inbound searches per client IP.
type RateLimitConfig struct {
	Enabled           bool          `env:"RATE_LIMIT_ENABLED" yaml:"enabled"`
	RequestsPerMinute int           `env:"RATE_LIMIT_RPM"     yaml:"requests_per_minute"`
	Window            time.Duration `yaml:"window"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	cfg.Logging.SetDefaults()
	setWebhookDefaults(&cfg.Webhook)
	setRateLimitDefaults(&cfg.RateLimit)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
	if svc.SearchDeadline == 0 {
		svc.SearchDeadline = defaultSearchDeadline
	}
	if svc.MaxResultsPerSource == 0 {
		svc.MaxResultsPerSource = defaultMaxResultsPerSource
	}
	if svc.UserAgent == "" {
		svc.UserAgent = defaultUserAgent
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
	if db.BufferSize == 0 {
		db.BufferSize = defaultBufferSize
	}
}

func setRedisDefaults(r *infraredis.Config) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
}

func setWebhookDefaults(w *WebhookConfig) {
	if w.Timeout == 0 {
		w.Timeout = defaultWebhookTimeout
	}
	if w.MaxAttempts == 0 {
		w.MaxAttempts = defaultWebhookAttempts
	}
	if w.InitialBackoff == 0 {
		w.InitialBackoff = defaultWebhookInitialBackoff
	}
}

func setRateLimitDefaults(rl *RateLimitConfig) {
	if rl.RequestsPerMinute == 0 {
		rl.RequestsPerMinute = defaultRequestsPerMinute
	}
	if rl.Window == 0 {
		rl.Window = defaultRateLimitWindow
	}
}

// Validate checks the loaded configuration and joins every problem found.
func (c *Config) Validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(infraconfig.ValidatePort("service.port", c.Service.Port))
	add(infraconfig.ValidatePositive("service.max_results_per_source", c.Service.MaxResultsPerSource))
	if c.Service.SearchDeadline <= 0 {
		add(&infraconfig.ValidationError{Field: "service.search_deadline", Message: "must be positive"})
	}

	if c.Database.Enabled {
		add(infraconfig.ValidateRequired("database.host", c.Database.Host))
		add(infraconfig.ValidatePort("database.port", c.Database.Port))
		add(infraconfig.ValidateRequired("database.database", c.Database.Database))
	}
	if c.Redis.Enabled {
		add(infraconfig.ValidateRequired("redis.address", c.Redis.Address))
	}

	add(infraconfig.ValidateLogLevel(c.Logging.Level))
	add(infraconfig.ValidateLogFormat(c.Logging.Format))

	add(infraconfig.ValidateOptionalURL("webhook.default_url", c.Webhook.DefaultURL))
	add(infraconfig.ValidatePositive("webhook.max_attempts", c.Webhook.MaxAttempts))

	if c.RateLimit.Enabled {
		add(infraconfig.ValidatePositive("rate_limit.requests_per_minute", c.RateLimit.RequestsPerMinute))
	}

	return errors.Join(errs...)
}
