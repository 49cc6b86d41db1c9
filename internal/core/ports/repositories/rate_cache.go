package repositories

import (
	"context"
	"time"
)

// RateCacheReader defines read operations against the key-value cache.
// The cache is soft-failing: a miss and an unreachable or disabled backend
// are indistinguishable, reads simply report ok=false. Callers must treat
// absence as a normal state, never as an error.
type RateCacheReader interface {
	// Get retrieves a plain string value.
	Get(ctx context.Context, key string) (string, bool)

	// HGet retrieves a single field from a hash.
	HGet(ctx context.Context, name, key string) (string, bool)

	// HGetAll retrieves every field of a hash; nil on miss.
	HGetAll(ctx context.Context, name string) map[string]string

	// HMGet retrieves multiple fields from a hash; entries for missing
	// fields are nil.
	HMGet(ctx context.Context, name string, keys ...string) []*string

	// Keys lists keys matching a glob-style pattern.
	Keys(ctx context.Context, pattern string) []string
}

// RateCacheWriter defines write operations against the key-value cache.
// Writes are silently skipped when the backend is unreachable.
type RateCacheWriter interface {
	// Set stores a plain string value with an expiry (0 means no expiry).
	Set(ctx context.Context, key, value string, expiry time.Duration)

	// HSet stores a single field in a hash, optionally setting an expiry
	// on the whole hash (0 means no expiry).
	HSet(ctx context.Context, name, key, value string, expiry time.Duration)

	// HDel removes a single field from a hash.
	HDel(ctx context.Context, name, key string)
}

// RateCacheFacade combines all cache operations.
type RateCacheFacade interface {
	RateCacheReader
	RateCacheWriter
}
