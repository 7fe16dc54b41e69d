package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis with a fixed expiry.
type RedisCache struct {
	Cli *redis.Client
	TTL time.Duration
}

func NewRedisCache(addr string, db int, ttl time.Duration) *RedisCache {
	return &RedisCache{
		Cli: redis.NewClient(&redis.Options{Addr: addr, DB: db}),
		TTL: ttl,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.Cli.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return val, err
}

func (r *RedisCache) Set(ctx context.Context, key string, val []byte) error {
	return r.Cli.Set(ctx, key, val, r.TTL).Err()
}

func (r *RedisCache) Del(ctx context.Context, key string) error {
	return r.Cli.Del(ctx, key).Err()
}

// Ping checks that the server is reachable.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.Cli.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.Cli.Close()
}
