// Package cache keeps signed access URLs in Redis so repeated reads of the
// same document do not re-sign on every request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"docsync/internal/config"
)

const keyPrefix = "docsync:url:"

// Client is the subset of *redis.Client used by the cache.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// URLCache stores access URLs by storage reference. Failures are logged and
// treated as misses.
type URLCache interface {
	Get(ctx context.Context, reference string) (string, bool)
	Set(ctx context.Context, reference, url string, ttl time.Duration)
	Invalidate(ctx context.Context, reference string)
}

// Connect opens a Redis client and verifies it with a ping.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

type redisURLCache struct {
	client Client
	log    *zap.Logger
}

// NewRedis returns a URLCache over client.
func NewRedis(client Client, log *zap.Logger) URLCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &redisURLCache{client: client, log: log.With(zap.String("component", "url_cache"))}
}

func (c *redisURLCache) Get(ctx context.Context, reference string) (string, bool) {
	v, err := c.client.Get(ctx, keyPrefix+reference).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("url cache get failed", zap.String("reference", reference), zap.Error(err))
		}
		return "", false
	}
	return v, v != ""
}

func (c *redisURLCache) Set(ctx context.Context, reference, url string, ttl time.Duration) {
	if ttl <= 0 || url == "" {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+reference, url, ttl).Err(); err != nil {
		c.log.Warn("url cache set failed", zap.String("reference", reference), zap.Error(err))
	}
}

func (c *redisURLCache) Invalidate(ctx context.Context, reference string) {
	if err := c.client.Del(ctx, keyPrefix+reference).Err(); err != nil {
		c.log.Warn("url cache invalidate failed", zap.String("reference", reference), zap.Error(err))
	}
}

type noop struct{}

// Noop returns a URLCache that never stores anything.
func Noop() URLCache { return noop{} }

func (noop) Get(context.Context, string) (string, bool)         { return "", false }
func (noop) Set(context.Context, string, string, time.Duration) {}
func (noop) Invalidate(context.Context, string)                 {}
