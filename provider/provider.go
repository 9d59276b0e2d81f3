// Package provider defines the byte stores that hold encoded AMP messages.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the bytes previously passed to Set for a key. An AMP message has no
// checksum, so a store that appends, trims or transcodes values produces
// messages that decode to different fields or fail with amp.ErrTruncated.
//
// The keyspace "amp:<ns>:" is owned by the store package; foreign values
// under it are treated as corrupt and deleted on read.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. It must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. May ignore cost if unsupported.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
