// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings. URL is optional: when
// it is unset the server runs on the in-memory store.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ImportConfig holds bulk import pipeline settings.
type ImportConfig struct {
	// MaxBodySize is the maximum allowed upload body size in bytes (default: 20MB)
	MaxBodySize int64 `env:"IMPORT_MAX_BODY_SIZE" default:"20971520"`

	// PreviewSampleErrors caps the error rows returned inline with a preview (default: 20)
	PreviewSampleErrors int `env:"IMPORT_PREVIEW_SAMPLE_ERRORS" default:"20"`

	// PreviewMaxEntries bounds the preview cache (default: 100)
	PreviewMaxEntries int `env:"IMPORT_PREVIEW_MAX_ENTRIES" default:"100"`

	// PreviewMaxAge is how long an unconsumed preview stays committable (default: 30m)
	PreviewMaxAge time.Duration `env:"IMPORT_PREVIEW_MAX_AGE" default:"30m"`

	// StartDelay is the pause before a queued job starts processing (default: 100ms)
	StartDelay time.Duration `env:"IMPORT_JOB_START_DELAY" default:"100ms"`

	// RowInterval is the inter-row apply pause that throttles job throughput (default: 10ms)
	RowInterval time.Duration `env:"IMPORT_JOB_ROW_INTERVAL" default:"10ms"`

	// MaxJobs bounds how many jobs are retained in memory (default: 200)
	MaxJobs int `env:"IMPORT_MAX_JOBS" default:"200"`

	// DefaultLanguage is the fallback language for validation messages (default: en)
	DefaultLanguage string `env:"IMPORT_DEFAULT_LANGUAGE" default:"en"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
