// Package cache provides pluggable byte caches for fetched image histories.
//
// # Backends
//
//   - [FileCache]: zstd-compressed files under the user cache directory (CLI)
//   - [MemoryCache]: bounded in-process LRU (HTTP server default)
//   - [RedisCache]: shared cache for several server instances
//   - [NullCache]: caching disabled
//
// All backends implement [Cache]. Keys are built by a [Keyer] so that every
// caller agrees on the key layout; [ScopedKeyer] prefixes keys for isolation.
//
// Histories of mutable tags change over time, so entries are always written
// with a TTL.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl stores without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HistoryKey identifies the layer history of ref as fetched by provider.
	HistoryKey(provider, ref string, opts HistoryKeyOpts) string

	// TagsKey identifies the tag list of repository as seen by provider.
	TagsKey(provider, repository string) string
}

// HistoryKeyOpts holds fetch options that change the fetched history.
type HistoryKeyOpts struct {
	Platform string `json:"platform,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HistoryKey returns "history:<provider>:<hash(ref, opts)>".
func (DefaultKeyer) HistoryKey(provider, ref string, opts HistoryKeyOpts) string {
	return hashKey("history:"+provider, ref, opts)
}

// TagsKey returns "tags:<provider>:<repository>".
func (DefaultKeyer) TagsKey(provider, repository string) string {
	return "tags:" + provider + ":" + repository
}
