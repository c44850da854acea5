package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/driftchat/drift/internal/core/ports"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrInviteNotFound = errors.New("no outstanding invite for this email")

// inviteTTL bounds how long an invite link stays redeemable.
const inviteTTL = 7 * 24 * time.Hour

// InviteTokenRedisRepository stores outstanding friend invites in Redis,
// keyed by the invited email. Only the bcrypt hash of the token is stored;
// the plaintext token exists only inside the emailed link.
type InviteTokenRedisRepository struct {
	r      redis.Cmdable
	logger *logrus.Logger
}

func NewInviteTokenRedisRepository(r redis.Cmdable, logger *logrus.Logger) ports.InviteTokenRepository {
	return &InviteTokenRedisRepository{r: r, logger: logger}
}

func inviteKey(email string) string {
	return "invite:" + email
}

// Store records an invite; a newer invite for the same email replaces the
// older one.
func (repo *InviteTokenRedisRepository) Store(ctx context.Context, email, tokenHash string, inviterID uuid.UUID) error {
	key := inviteKey(email)
	pipe := repo.r.TxPipeline()
	pipe.HSet(ctx, key, "token_hash", tokenHash, "inviter_id", inviterID.String())
	pipe.Expire(ctx, key, inviteTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		if repo.logger != nil {
			repo.logger.WithError(err).Error("redis: failed to store invite token")
		}
		return fmt.Errorf("failed to store invite: %w", err)
	}
	return nil
}

// Get returns the stored token hash and inviter for an email.
func (repo *InviteTokenRedisRepository) Get(ctx context.Context, email string) (string, uuid.UUID, error) {
	vals, err := repo.r.HGetAll(ctx, inviteKey(email)).Result()
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("failed to read invite: %w", err)
	}
	if len(vals) == 0 {
		return "", uuid.Nil, ErrInviteNotFound
	}
	inviterID, err := uuid.Parse(vals["inviter_id"])
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("corrupt invite record: %w", err)
	}
	return vals["token_hash"], inviterID, nil
}

// Delete removes the invite once redeemed or revoked.
func (repo *InviteTokenRedisRepository) Delete(ctx context.Context, email string) error {
	return repo.r.Del(ctx, inviteKey(email)).Err()
}
