// Package config loads application configuration from environment variables,
// applies defaults and validates everything at startup so misconfiguration
// fails fast.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Transfer  TransferConfig
	Warehouse WarehouseConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	History   HistoryConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to.
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including the wait for
	// in-flight transfers.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is applied by middleware to every request.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// DatabaseConfig holds PostgreSQL settings for users, saved configurations
// and job history.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. DB_URL is accepted as well.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Migrate runs pending schema migrations on startup.
	Migrate bool `env:"DB_MIGRATE" default:"true"`
}

// TransferConfig holds flat-file and transfer execution settings.
type TransferConfig struct {
	// OutputDir receives exported files.
	OutputDir string `env:"TRANSFER_OUTPUT_DIR" default:"./data/exports"`

	// MaxUploadSize is the largest accepted upload in bytes (default 100MB).
	MaxUploadSize int64 `env:"TRANSFER_MAX_UPLOAD_SIZE" default:"104857600"`

	// MaxConcurrent bounds transfers running at once.
	MaxConcurrent int `env:"TRANSFER_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a transfer waits for a free slot.
	MaxWaitTime time.Duration `env:"TRANSFER_MAX_WAIT_TIME" default:"30s"`
}

// WarehouseConfig holds the embedded DuckDB source settings.
type WarehouseConfig struct {
	// Path is the DuckDB database file; empty means in-memory.
	Path string `env:"WAREHOUSE_PATH" envAlt:"DUCKDB_PATH" default:"./data/warehouse.duckdb"`

	// Schema is browsed when a request names no database.
	Schema string `env:"WAREHOUSE_SCHEMA" default:"main"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the sustained per-IP rate.
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// Burst is the token bucket size.
	Burst int `env:"RATE_LIMIT_BURST" default:"30"`

	// TransferLimit is the per-IP rate for transfer endpoints.
	TransferLimit int `env:"RATE_LIMIT_TRANSFER" default:"10"`
}

// SecurityConfig holds authentication and header settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP / X-Forwarded-For headers are honored.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// AllowedOrigins for CORS; empty disables cross-origin access.
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`

	// JWTSecret signs bearer tokens (HS256). At least 32 bytes.
	JWTSecret string `env:"JWT_SECRET" envAlt:"AUTH_SECRET"`

	TokenTTL time.Duration `env:"JWT_TOKEN_TTL" default:"24h"`

	TokenIssuer string `env:"JWT_ISSUER" default:"flatbridge"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level: debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format: text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// HistoryConfig holds job history retention settings.
type HistoryConfig struct {
	// RetentionDays is how long finished jobs are kept.
	RetentionDays int `env:"HISTORY_RETENTION_DAYS" default:"90"`

	// PurgeSchedule is a cron expression (or @daily style descriptor).
	PurgeSchedule string `env:"HISTORY_PURGE_SCHEDULE" default:"@daily"`
}

// Addr returns the server listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
