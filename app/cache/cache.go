// Package cache provides the byte caches used to keep hot posts out of the
// record store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"postboard/app/config"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a TTL bounded key/value cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte) error
	Del(ctx context.Context, key string) error
}

type entry struct {
	val     []byte
	expires time.Time
}

// MemoryCache is an in-process Cache with per-entry expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates a MemoryCache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	if !c.now().Before(e.expires) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expires.Equal(e.expires) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, ErrMiss
	}
	return e.val, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, val []byte) error {
	cp := make([]byte, len(val))
	copy(cp, val)
	c.mu.Lock()
	c.entries[key] = entry{val: cp, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// New builds the cache named by cfg.Type. It returns nil for "none".
func New(cfg config.CacheConfig) (Cache, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryCache(ttl), nil
	case "redis":
		return NewRedisCache(cfg.RedisAddr, cfg.RedisDB, ttl), nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}
