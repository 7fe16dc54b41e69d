// Package config reads and writes the TOML configuration file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for postboard.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Cache    CacheConfig    `toml:"cache"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig holds HTTP listener and session settings.
type ServerConfig struct {
	Addr                   string `toml:"addr"`
	SessionSecret          string `toml:"session_secret"`
	CookieSecure           bool   `toml:"cookie_secure"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds"`
}

// DatabaseConfig selects the post record store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type string `toml:"type"`          // "badger" (default), "sqlite", "postgres" or "memory"
	Path string `toml:"path,omitempty"` // badger directory or sqlite file
	DSN  string `toml:"dsn,omitempty"`  // only used for type=postgres
}

// StorageConfig selects where uploaded images are kept.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type      string `toml:"type"` // "local" (default), "s3" or "memory"
	Root      string `toml:"root,omitempty"`
	PublicURL string `toml:"public_url,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"`
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`
	S3PublicURL string `toml:"s3_public_url,omitempty"`
}

// CacheConfig configures the read-through post cache.
type CacheConfig struct {
	Type       string `toml:"type"` // "none" (default), "memory" or "redis"
	RedisAddr  string `toml:"redis_addr,omitempty"`
	RedisDB    int    `toml:"redis_db,omitempty"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
}

// NewConfig returns a Config with every default filled in, rooted at baseDir.
func NewConfig(baseDir string) *Config {
	cfg := &Config{}
	cfg.Database.Path = filepath.Join(baseDir, "badger")
	cfg.Storage.Root = filepath.Join(baseDir, "storage")
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills in every zero value that has a default.
func (c *Config) SetDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = 10
	}
	if c.Database.Type == "" {
		c.Database.Type = "badger"
	}
	if c.Database.Path == "" {
		switch c.Database.Type {
		case "badger":
			c.Database.Path = filepath.Join("data", "badger")
		case "sqlite":
			c.Database.Path = filepath.Join("data", "postboard.db")
		}
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	if c.Storage.Type == "local" && c.Storage.Root == "" {
		c.Storage.Root = filepath.Join("data", "storage")
	}
	if c.Storage.PublicURL == "" {
		c.Storage.PublicURL = "/storage"
	}
	if c.Cache.Type == "" {
		c.Cache.Type = "none"
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 300
	}
	if c.Cache.Type == "redis" && c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate rejects unknown backend types and missing required fields.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "badger", "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database type %s requires path to be set", c.Database.Type)
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database type postgres requires dsn to be set")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database type: %s", c.Database.Type)
	}

	switch c.Storage.Type {
	case "local":
		if c.Storage.Root == "" {
			return fmt.Errorf("storage type local requires root to be set")
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("storage type s3 requires s3_bucket to be set")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.Type)
	}

	switch c.Cache.Type {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("unknown cache type: %s", c.Cache.Type)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", c.Log.Format)
	}
	return nil
}

// ShutdownTimeout returns the graceful shutdown window.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// CacheTTL returns how long cached posts stay fresh.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader and applies defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.SetDefaults()
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads path when it exists and falls back to defaults otherwise.
func Load(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return ReadFromFile(path)
		}
	}
	return NewConfig("data"), nil
}

// Init writes cfg to path, refusing to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
