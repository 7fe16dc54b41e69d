package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerReadWrite(t *testing.T) {
	original := &Config{
		Server:   ServerConfig{Addr: ":9090", SessionSecret: "secret", CookieSecure: true, ShutdownTimeoutSeconds: 3},
		Database: DatabaseConfig{Type: "sqlite", Path: "/var/lib/postboard/posts.db"},
		Storage: StorageConfig{
			Type:        "s3",
			PublicURL:   "/storage",
			S3Bucket:    "images",
			S3Prefix:    "uploads",
			S3Region:    "eu-west-1",
			S3PublicURL: "https://cdn.example.com",
		},
		Cache: CacheConfig{Type: "redis", RedisAddr: "redis:6379", RedisDB: 2, TTLSeconds: 60},
		Log:   LogConfig{Level: "debug", Format: "json"},
	}

	var buf bytes.Buffer
	m := &Manager{}
	require.NoError(t, m.Write(&buf, original))

	got, err := m.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestReadAppliesDefaults(t *testing.T) {
	m := &Manager{}
	cfg, err := m.Read(strings.NewReader(`
[database]
type = "memory"

[storage]
type = "memory"
`))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Database.Type)
	assert.Equal(t, "/storage", cfg.Storage.PublicURL)
	assert.Equal(t, "none", cfg.Cache.Type)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestReadInvalidTOML(t *testing.T) {
	m := &Manager{}
	_, err := m.Read(strings.NewReader("[server\naddr = "))
	assert.Error(t, err)
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/srv/postboard")

	assert.Equal(t, "badger", cfg.Database.Type)
	assert.Equal(t, filepath.Join("/srv/postboard", "badger"), cfg.Database.Path)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, filepath.Join("/srv/postboard", "storage"), cfg.Storage.Root)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"unknown database", func(c *Config) { c.Database.Type = "mysql" }, "unknown database type"},
		{"postgres without dsn", func(c *Config) { c.Database.Type = "postgres" }, "requires dsn"},
		{"unknown storage", func(c *Config) { c.Storage.Type = "ftp" }, "unknown storage type"},
		{"s3 without bucket", func(c *Config) { c.Storage.Type = "s3" }, "requires s3_bucket"},
		{"local without root", func(c *Config) { c.Storage.Root = "" }, "requires root"},
		{"unknown cache", func(c *Config) { c.Cache.Type = "memcached" }, "unknown cache type"},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, "unknown log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(t.TempDir())
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitAndReadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "postboard.toml")
	cfg := NewConfig("/srv/postboard")

	require.NoError(t, Init(path, cfg))

	got, err := ReadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	err = Init(path, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestLoad(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, "badger", cfg.Database.Type)
	})

	t.Run("existing file is read", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "postboard.toml")
		cfg := NewConfig("/srv/postboard")
		cfg.Server.Addr = ":7000"
		require.NoError(t, Init(path, cfg))

		got, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":7000", got.Server.Addr)
	})
}
