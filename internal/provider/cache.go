package provider

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/quarter-spiral/devcenter-backend/internal/pkg/logger"
)

// RedisCache memoizes computed payloads in redis. Cache failures are logged
// and degrade to computing; they never fail the request.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a cache backed by the given redis instance.
func NewRedisCache(addr, password string, db int) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

var _ Cache = (*RedisCache)(nil)

// Fetch returns the cached payload under key, computing and storing it on a
// miss.
func (c *RedisCache) Fetch(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	payload, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return payload, nil
}

// Close releases the redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NoopCache computes on every fetch. Used when no redis instance is
// configured.
type NoopCache struct{}

var _ Cache = (*NoopCache)(nil)

func (NoopCache) Fetch(ctx context.Context, _ string, _ time.Duration, compute func(context.Context) ([]byte, error)) ([]byte, error) {
	return compute(ctx)
}
