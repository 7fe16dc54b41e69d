package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"postboard/app/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }

	_, err := c.Get(ctx, "post:1")
	assert.ErrorIs(t, err, ErrMiss)

	val := []byte(`{"id":1}`)
	require.NoError(t, c.Set(ctx, "post:1", val))
	val[0] = 'x'

	got, err := c.Get(ctx, "post:1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(got), "stored value must not alias the caller's slice")

	t.Run("expires after ttl", func(t *testing.T) {
		now = now.Add(time.Minute)
		_, err := c.Get(ctx, "post:1")
		assert.ErrorIs(t, err, ErrMiss)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "post:2", []byte("a")))
		require.NoError(t, c.Del(ctx, "post:2"))
		require.NoError(t, c.Del(ctx, "post:2"))
		_, err := c.Get(ctx, "post:2")
		assert.ErrorIs(t, err, ErrMiss)
	})
}

func TestNew(t *testing.T) {
	c, err := New(config.CacheConfig{Type: "none"})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New(config.CacheConfig{Type: "memory", TTLSeconds: 30})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	c, err = New(config.CacheConfig{Type: "redis", RedisAddr: "localhost:6379", TTLSeconds: 30})
	require.NoError(t, err)
	rc := c.(*RedisCache)
	assert.Equal(t, 30*time.Second, rc.TTL)
	assert.NoError(t, rc.Close())

	_, err = New(config.CacheConfig{Type: "memcached"})
	assert.Error(t, err)
}

// TestRedisCache needs a live server; set REDIS_ADDR to run it.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rc := NewRedisCache(addr, 0, time.Minute)
	t.Cleanup(func() { rc.Close() })
	require.NoError(t, rc.Ping(ctx))

	key := "postboard:test:" + time.Now().Format(time.RFC3339Nano)
	_, err := rc.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, rc.Set(ctx, key, []byte("hello")))
	got, err := rc.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	require.NoError(t, rc.Del(ctx, key))
	_, err = rc.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)
}
