// Package cache stores encoded frames so repeated renders of the same scene,
// time and values are served without drawing.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the preview server
//
// # Keys
//
// A [Keyer] turns a scene hash and the frame options into a key. Keys
// depend only on their inputs, so two processes rendering the same frame
// share the entry:
//
//	key := cache.NewDefaultKeyer().FrameKey(sceneHash, cache.FrameKeyOpts{
//	    Time:   "10:08:36",
//	    Format: "png",
//	})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// TTLFrame bounds how long a rendered frame is kept. Frames are pure
	// functions of their key, so this only limits disk and memory use.
	TTLFrame = 7 * 24 * time.Hour

	// TTLPreview is used for downscaled preview images.
	TTLPreview = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was present. A miss is
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}
