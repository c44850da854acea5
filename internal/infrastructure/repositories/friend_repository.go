package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/driftchat/drift/internal/core/domain/friend"
	"github.com/driftchat/drift/internal/core/domain/user"
	"github.com/driftchat/drift/internal/core/ports"
	"github.com/driftchat/drift/internal/infrastructure/db"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FriendRepository implements the friendship repository interface
type FriendRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(database *db.Database, logger *logrus.Logger) ports.FriendRepository {
	return &FriendRepository{
		db:     database,
		logger: logger,
	}
}

// Create inserts a friendship row. The canonical pair columns enforce one
// row per relationship regardless of who initiated.
func (r *FriendRepository) Create(ctx context.Context, f *friend.Friendship) error {
	a, b := friend.CanonicalPair(f.RequesterID, f.ReceiverID)
	query := `
		INSERT INTO friendships (id, requester_id, receiver_id, status, user_a, user_b)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.DB.ExecContext(ctx, query, f.ID, f.RequesterID, f.ReceiverID, f.Status, a, b)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"requester_id": f.RequesterID, "receiver_id": f.ReceiverID}).WithError(err).Error("db: failed to create friendship")
		}
		return fmt.Errorf("failed to create friendship: %w", err)
	}
	return nil
}

// GetByID retrieves a friendship by id
func (r *FriendRepository) GetByID(ctx context.Context, id uuid.UUID) (*friend.Friendship, error) {
	var f friend.Friendship
	query := `
		SELECT id, requester_id, receiver_id, status, created_at, updated_at
		FROM friendships
		WHERE id = $1`

	err := r.db.DB.GetContext(ctx, &f, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, friend.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get friendship: %w", err)
	}
	return &f, nil
}

// GetByPair resolves the relationship between two users in either order.
func (r *FriendRepository) GetByPair(ctx context.Context, a, b uuid.UUID) (*friend.Friendship, error) {
	ua, ub := friend.CanonicalPair(a, b)
	var f friend.Friendship
	query := `
		SELECT id, requester_id, receiver_id, status, created_at, updated_at
		FROM friendships
		WHERE user_a = $1 AND user_b = $2`

	err := r.db.DB.GetContext(ctx, &f, query, ua, ub)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, friend.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get friendship by pair: %w", err)
	}
	return &f, nil
}

// UpdateStatus moves a friendship through its lifecycle
func (r *FriendRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status friend.Status) error {
	query := `UPDATE friendships SET status = $2, updated_at = now() WHERE id = $1`

	res, err := r.db.DB.ExecContext(ctx, query, id, status)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"friendship_id": id, "status": status}).WithError(err).Error("db: failed to update friendship status")
		}
		return fmt.Errorf("failed to update friendship status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return friend.ErrNotFound
	}
	return nil
}

// Delete removes a friendship row entirely (unfriend, or declined request cleanup)
func (r *FriendRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.DB.ExecContext(ctx, `DELETE FROM friendships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	return nil
}

// ListFriends returns the accepted counterparts' profiles.
func (r *FriendRepository) ListFriends(ctx context.Context, userID uuid.UUID) ([]*user.User, error) {
	var friends []*user.User
	query := `
		SELECT u.id, u.email, u.display_name, u.avatar_url, u.status_line, u.created_at, u.updated_at
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.requester_id = $1 THEN f.receiver_id ELSE f.requester_id END
		WHERE (f.requester_id = $1 OR f.receiver_id = $1) AND f.status = 'accepted'
		ORDER BY u.display_name`

	if err := r.db.DB.SelectContext(ctx, &friends, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return friends, nil
}

// ListPending returns requests waiting on userID's answer.
func (r *FriendRepository) ListPending(ctx context.Context, userID uuid.UUID) ([]*friend.Friendship, error) {
	var reqs []*friend.Friendship
	query := `
		SELECT id, requester_id, receiver_id, status, created_at, updated_at
		FROM friendships
		WHERE receiver_id = $1 AND status = 'pending'
		ORDER BY created_at DESC`

	if err := r.db.DB.SelectContext(ctx, &reqs, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return reqs, nil
}

// ListSent returns requests userID initiated that are still pending.
func (r *FriendRepository) ListSent(ctx context.Context, userID uuid.UUID) ([]*friend.Friendship, error) {
	var reqs []*friend.Friendship
	query := `
		SELECT id, requester_id, receiver_id, status, created_at, updated_at
		FROM friendships
		WHERE requester_id = $1 AND status = 'pending'
		ORDER BY created_at DESC`

	if err := r.db.DB.SelectContext(ctx, &reqs, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list sent requests: %w", err)
	}
	return reqs, nil
}
