// Package cache stores fetched asset bytes and rendered wallpapers.
//
// Backends implement [Cache]:
//   - [FileCache]: JSON entries under the user cache directory, for the CLI
//   - [RedisCache]: shared cache for several `stickerwall serve` instances
//   - [MemoryCache]: process-local map, used when no cache directory exists
//   - [NullCache]: disables caching
//
// Keys are built by a [Keyer] so every backend sees the same namespace:
//
//	keyer := cache.NewDefaultKeyer()
//	data, hit, err := c.Get(ctx, keyer.AssetKey("https://example.com/a.png"))
package cache

import (
	"context"
	"time"
)

// Default lifetimes for cached entries.
const (
	// TTLAsset applies to remote sticker images.
	TTLAsset = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered wallpapers of seeded runs.
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	// Expired or corrupt entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ArtifactKeyOpts identifies one rendered wallpaper. Any field that changes
// the output bytes must be part of the key.
type ArtifactKeyOpts struct {
	Sources       []string `json:"sources"`
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	Density       float64  `json:"density"`
	SizeVariation float64  `json:"size_variation"`
	Seed          uint64   `json:"seed"`
	Rounds        int      `json:"rounds"`
	Background    string   `json:"background"`
	Format        string   `json:"format"`
	Quality       int      `json:"quality"`
	Backend       string   `json:"backend"`
}

// Keyer builds cache keys.
type Keyer interface {
	// AssetKey returns the key for the bytes behind a remote locator.
	AssetKey(locator string) string

	// ArtifactKey returns the key for an encoded wallpaper.
	ArtifactKey(opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// AssetKey returns "asset:<sha256(locator)>".
func (DefaultKeyer) AssetKey(locator string) string {
	return hashKey("asset", locator)
}

// ArtifactKey returns "artifact:<sha256(opts)>".
func (DefaultKeyer) ArtifactKey(opts ArtifactKeyOpts) string {
	return hashKey("artifact", opts)
}
