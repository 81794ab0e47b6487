package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key is not present in the cache.
var ErrMiss = errors.New("cache: key not found")

// Cache is a small byte-oriented cache/session-store abstraction. The
// category list cache and the per-user recently-viewed lists live behind it.
type Cache interface {
	// GetBytes returns the value stored under key, or ErrMiss.
	GetBytes(ctx context.Context, key string) ([]byte, error)

	// SetBytes stores value under key with the given TTL. A zero TTL means
	// the entry does not expire.
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete evicts the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Expire re-arms the TTL of an existing key. Used to implement sliding
	// expiration: callers re-issue Expire on every read.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Close releases the underlying connection.
	Close() error
}
