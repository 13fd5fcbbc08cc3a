// Package cache provides the byte-oriented caches keyforge uses to avoid
// recomputing layouts and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [MemoryCache]: in-process, backed by bigcache (API server default)
//   - [RedisCache]: shared across processes, backed by Redis
//   - [NullCache]: never stores anything (--no-cache)
//
// # Keys
//
// Callers never build keys by hand. A [Keyer] derives them from content
// hashes and the options that influence the cached value, so a change to
// either produces a new key. [ScopedKeyer] adds a prefix for isolating
// tenants or environments that share one backend.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per key type.
const (
	DefaultLayoutTTL   = 30 * 24 * time.Hour
	DefaultArtifactTTL = 7 * 24 * time.Hour
)

// Cache stores opaque values by key.
type Cache interface {
	// Get returns the value and true on a hit, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// LayoutKeyOpts holds the options that change a computed layout.
type LayoutKeyOpts struct {
	Strategy  string `json:"strategy"`
	NodeLimit int    `json:"node_limit"`
}

// ArtifactKeyOpts holds the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	TopEdges int     `json:"top_edges"`
	Scale    float64 `json:"scale,omitempty"` // raster formats only
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key for the layout of the matrix with the given content hash.
	LayoutKey(matrixHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key for a rendering of the keyboard with the given content hash.
	ArtifactKey(keyboardHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(matrixHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", matrixHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(keyboardHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", keyboardHash, opts)
}
