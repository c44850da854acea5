package ports

import (
	"context"
	"time"
)

// Cache defines the key-value cache contract the social/chat caches sit on.
// Implementations should degrade gracefully (returning an error without
// crashing callers) so application logic can fall back to the primary
// datastore; a miss or an expired entry is never an error.
type Cache interface {
	// Get returns the raw bytes for key. ok=false if absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key with TTL; unconditionally overwrites.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string) error
	// ClearPattern removes every key containing substring. This is how the
	// invalidation router drops a whole family of keys (all pages of a chat
	// window, every entry naming a user) without enumerating them.
	ClearPattern(ctx context.Context, substring string) error
}
