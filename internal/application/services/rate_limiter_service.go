package services

import (
	"context"
	"time"

	"github.com/driftchat/drift/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RateLimiterService implements RateLimiter with a fixed-window counter per
// user. Write endpoints (messages, friend requests, reactions) share one
// policy.
type RateLimiterService struct {
	repo      ports.RateLimitRepository
	limit     int
	window    time.Duration
	keyPrefix string
	logger    *logrus.Logger
}

// RateLimiterConfig groups configuration parameters for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerMinute int
	Window            time.Duration
	KeyPrefix         string
}

func NewRateLimiterService(repo ports.RateLimitRepository, cfg *RateLimiterConfig, logger *logrus.Logger) *RateLimiterService {
	limit := 60
	w := time.Minute
	kp := "ratelimit:user"
	if cfg != nil {
		if cfg.RequestsPerMinute > 0 {
			limit = cfg.RequestsPerMinute
		}
		if cfg.Window > 0 {
			w = cfg.Window
		}
		if cfg.KeyPrefix != "" {
			kp = cfg.KeyPrefix
		}
	}
	return &RateLimiterService{repo: repo, limit: limit, window: w, keyPrefix: kp, logger: logger}
}

func (s *RateLimiterService) Allow(ctx context.Context, userID uuid.UUID) (bool, int, int, time.Time, error) {
	ttl := s.window * 2 // retain overlap window
	count, windowStart, err := s.repo.IncrementWindow(ctx, userID, s.window, s.keyPrefix, ttl)
	reset := windowStart.Add(s.window)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": userID}).WithError(err).Error("rate limiter: failed to increment window")
		}
		// fail open
		return true, s.limit, s.limit, reset, err
	}
	if count > s.limit {
		return false, 0, s.limit, reset, nil
	}
	return true, s.limit - count, s.limit, reset, nil
}
