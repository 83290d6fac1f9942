// Package cache provides pluggable result caching for expensive
// operations: external database lookups, motif quantification matrices,
// and rendered diagrams. Backends cover local files, Redis, and a no-op
// null cache.
package cache

import (
	"context"
	"time"
)

// Cache is the backend contract. Implementations must treat a missing key
// as (nil, false, nil), not as an error.
type Cache interface {
	// Get returns the stored bytes and whether the key was present and
	// fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
