// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Storage drivers accepted by DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Cache    CacheConfig
	Events   EventsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 2m30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"150s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for non-import requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	// Driver selects the lead store: postgres, sqlite or memory (default: postgres)
	Driver string `env:"DB_DRIVER" default:"postgres"`

	// URL is the PostgreSQL connection string (required for the postgres driver)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// SQLitePath is the database file for the sqlite driver (default: leadtracker.db)
	SQLitePath string `env:"SQLITE_PATH" default:"leadtracker.db"`

	// LogSQL logs every statement of the sqlite driver (default: false)
	LogSQL bool `env:"DB_LOG_SQL" default:"false"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ImportConfig holds lead import settings.
type ImportConfig struct {
	// MaxFileSize is the maximum accepted upload in bytes (default: 20MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"20971520"`

	// MaxConcurrent is the maximum number of parallel imports (default: 4)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for an import slot (default: 15s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"15s"`

	// Timeout is the maximum duration of a single import (default: 2m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"2m"`

	// DefaultCompanyName fills company_name on rows that have none
	DefaultCompanyName string `env:"IMPORT_DEFAULT_COMPANY_NAME" default:"Unknown Company"`

	// PreviewSampleSize is the number of rows shown by the preview (default: 5)
	PreviewSampleSize int `env:"IMPORT_PREVIEW_SAMPLE_SIZE" default:"5"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ImportLimit is requests per minute for import endpoints (default: 10)
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// CORSAllowedOrigins is a comma-separated list of origins allowed by CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`

	// RequireAPIKey enables X-API-Key authentication on /api (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// CacheConfig holds the Redis view cache settings. An empty Addr keeps the
// cache in process memory.
type CacheConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" default:"0"`
	Prefix   string        `env:"REDIS_PREFIX" default:"leadtracker:view:"`
	TTL      time.Duration `env:"REDIS_TTL" default:"5m"`
}

// Enabled reports whether a Redis server is configured.
func (c *CacheConfig) Enabled() bool {
	return c.Addr != ""
}

// EventsConfig holds the RabbitMQ settings for import events. An empty URL
// disables publishing.
type EventsConfig struct {
	URL      string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE" default:"ex.leads"`
}

// Enabled reports whether a broker is configured.
func (c *EventsConfig) Enabled() bool {
	return c.URL != ""
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
