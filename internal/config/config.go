// Package config loads the column arranger's settings from environment
// variables, applies defaults and validates everything up front so a bad
// deployment fails at startup rather than on first use.
package config

import (
	"strconv"
	"time"

	"github.com/JonMunkholm/colarrange/internal/core"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Upload    UploadConfig
	Workspace WorkspaceConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is applied by middleware to every request.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// StorageConfig selects where saved arrangements live.
type StorageConfig struct {
	// Backend is one of memory, file, sqlite, postgres.
	Backend string `env:"STORAGE_BACKEND" default:"file"`

	// Key names the arrangement collection in every backend.
	Key string `env:"STORAGE_KEY" default:"csvColumnArrangements"`

	// Dir holds <Key>.json for the file backend.
	Dir string `env:"STORAGE_DIR" default:"data"`

	SQLitePath string `env:"SQLITE_PATH" default:"data/arrangements.db"`
}

// DatabaseConfig holds PostgreSQL settings, used by the postgres backend.
type DatabaseConfig struct {
	// URL supports both DATABASE_URL and DB_URL. Required only when the
	// storage backend is postgres.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig bounds file parsing.
type UploadConfig struct {
	// MaxFileSize accepts plain bytes or a KB/MB/GB suffix (default: 100MB).
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"100MB" size:"true"`

	// MaxConcurrent is the number of files parsed at once.
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long an upload waits for a parse slot.
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// WorkspaceConfig controls the in-memory workspace registry.
type WorkspaceConfig struct {
	IdleTimeout   time.Duration `env:"WORKSPACE_IDLE_TIMEOUT" default:"30m"`
	SweepInterval time.Duration `env:"WORKSPACE_SWEEP_INTERVAL" default:"1m"`

	// Max caps open workspaces; 0 means unlimited.
	Max int `env:"WORKSPACE_MAX" default:"100"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for file upload endpoints.
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies lists proxy IPs or CIDRs whose forwarding headers are
	// believed.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey gates /api behind the X-API-Key header.
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// ServiceConfig returns the core service settings carried by c.
func (c *Config) ServiceConfig() core.ServiceConfig {
	return core.ServiceConfig{
		MaxFileSize:   c.Upload.MaxFileSize,
		MaxConcurrent: c.Upload.MaxConcurrent,
		MaxWait:       c.Upload.MaxWaitTime,
		IdleTimeout:   c.Workspace.IdleTimeout,
		MaxWorkspaces: c.Workspace.Max,
	}
}
