package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Settings exposes the reloadable runtime flag consulted on every read.
type Settings interface {
	CacheEnabled() bool
}

// RedisCache adapts a Redis client to the rate cache port with soft-fail
// semantics: a nil client, an unreachable backend, or a failed operation all
// present as a plain miss on reads and a silent skip on writes. The service
// degrades to "always fetch from upstream" instead of erroring.
//
// Reads additionally honor the runtime cache flag; writes only require a
// live connection, so a flipped flag stops serving stale data immediately
// while still keeping the cache warm.
type RedisCache struct {
	client   *redis.Client
	settings Settings
	logger   *slog.Logger
}

// NewRedisCache creates the cache adapter. client may be nil, in which case
// every operation is a no-op. settings may be nil, in which case reads are
// always allowed.
func NewRedisCache(client *redis.Client, settings Settings, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{
		client:   client,
		settings: settings,
		logger:   logger,
	}
}

func (c *RedisCache) readable() bool {
	if c.client == nil {
		return false
	}
	return c.settings == nil || c.settings.CacheEnabled()
}

func (c *RedisCache) writable() bool {
	return c.client != nil
}

func (c *RedisCache) warn(op, key string, err error) {
	if errors.Is(err, redis.Nil) {
		return
	}
	c.logger.Warn("Cache operation failed, treating as miss",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

// Get retrieves a plain string value; ok=false on miss or failure.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	if !c.readable() {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		c.warn("GET", key, err)
		return "", false
	}
	return val, true
}

// Set stores a plain string value. expiry of 0 means no expiry.
func (c *RedisCache) Set(ctx context.Context, key, value string, expiry time.Duration) {
	if !c.writable() {
		return
	}
	if err := c.client.Set(ctx, key, value, expiry).Err(); err != nil {
		c.warn("SET", key, err)
	}
}

// HGet retrieves a single hash field; ok=false on miss or failure.
func (c *RedisCache) HGet(ctx context.Context, name, key string) (string, bool) {
	if !c.readable() {
		return "", false
	}
	val, err := c.client.HGet(ctx, name, key).Result()
	if err != nil {
		c.warn("HGET", name, err)
		return "", false
	}
	return val, true
}

// HSet stores a single hash field. A non-zero expiry is applied to the whole
// hash after the write, matching the snapshot caching scheme.
func (c *RedisCache) HSet(ctx context.Context, name, key, value string, expiry time.Duration) {
	if !c.writable() {
		return
	}
	if err := c.client.HSet(ctx, name, key, value).Err(); err != nil {
		c.warn("HSET", name, err)
		return
	}
	if expiry > 0 {
		if err := c.client.Expire(ctx, name, expiry).Err(); err != nil {
			c.warn("EXPIRE", name, err)
		}
	}
}

// HDel removes a single hash field.
func (c *RedisCache) HDel(ctx context.Context, name, key string) {
	if !c.writable() {
		return
	}
	if err := c.client.HDel(ctx, name, key).Err(); err != nil {
		c.warn("HDEL", name, err)
	}
}

// HGetAll retrieves every field of a hash; nil on miss or failure.
func (c *RedisCache) HGetAll(ctx context.Context, name string) map[string]string {
	if !c.readable() {
		return nil
	}
	res, err := c.client.HGetAll(ctx, name).Result()
	if err != nil {
		c.warn("HGETALL", name, err)
		return nil
	}
	if len(res) == 0 {
		return nil
	}
	return res
}

// HMGet retrieves multiple hash fields; entries for missing fields are nil.
// Returns nil entirely on miss or failure.
func (c *RedisCache) HMGet(ctx context.Context, name string, keys ...string) []*string {
	if !c.readable() || len(keys) == 0 {
		return nil
	}
	raw, err := c.client.HMGet(ctx, name, keys...).Result()
	if err != nil {
		c.warn("HMGET", name, err)
		return nil
	}
	res := make([]*string, len(raw))
	for i, v := range raw {
		if s, ok := v.(string); ok {
			res[i] = &s
		}
	}
	return res
}

// Keys lists keys matching a glob-style pattern; nil on failure.
func (c *RedisCache) Keys(ctx context.Context, pattern string) []string {
	if !c.readable() {
		return nil
	}
	keys, err := c.client.Keys(ctx, pattern).Result()
	if err != nil {
		c.warn("KEYS", pattern, err)
		return nil
	}
	return keys
}
