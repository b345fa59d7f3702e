// Package cache stores rendered diagrams so repeated renders of unchanged
// sources skip the round trip to the PlantUML server.
//
// Three backends implement [Cache]:
//   - [FileCache]: entries as JSON files under the user cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance, useful for the preview server
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the cached data and true on a hit. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// NullCache never stores anything; every Get is a miss. It backs --no-cache.
type NullCache struct{}

var _ Cache = NullCache{}

// NewNullCache returns a cache that discards writes.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
