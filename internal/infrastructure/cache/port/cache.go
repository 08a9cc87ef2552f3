package port

import (
	"context"
	"time"
)

// Cache is the minimal key-value contract the application depends on.
// Implementations must be safe for concurrent use, and every method is
// context-aware so callers control timeouts and cancellation.
//
// Values are stored as strings to keep the port free of serialization
// concerns; callers marshal/unmarshal at the edges.
type Cache interface {
	// Get fetches the value for key. A miss is reported as ("", ErrMiss);
	// a non-nil error other than ErrMiss indicates a transport or server
	// failure, never a miss.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key with the provided TTL. Zero or negative TTL
	// means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes one or more keys and returns the number of keys removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping verifies connectivity with the cache backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrMiss signals a cache miss in a typed way so callers can distinguish
// misses from transport errors.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
