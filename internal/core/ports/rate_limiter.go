package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RateLimitRepository stores fixed-window counters.
type RateLimitRepository interface {
	IncrementWindow(ctx context.Context, userID uuid.UUID, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

// RateLimiter answers whether a user may perform another write this window.
type RateLimiter interface {
	Allow(ctx context.Context, userID uuid.UUID) (allowed bool, remaining int, limit int, reset time.Time, err error)
}
