package cache

import (
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when a key is absent or expired,
// regardless of the backing store.
var ErrCacheMiss = errors.New("cache: miss")

// CacheService is the store behind short-lived operational state such as
// adapter cooldowns.
type CacheService interface {
	// Get retrieves a value from the cache, ErrCacheMiss when absent
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
