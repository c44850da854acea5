package ports

import (
	"context"

	"github.com/driftchat/drift/internal/core/domain/chat"
	"github.com/driftchat/drift/internal/core/domain/friend"
	"github.com/driftchat/drift/internal/core/domain/user"
	"github.com/google/uuid"
)

// FriendRepository defines the interface for friendship data operations
type FriendRepository interface {
	Create(ctx context.Context, f *friend.Friendship) error
	GetByID(ctx context.Context, id uuid.UUID) (*friend.Friendship, error)
	// GetByPair resolves the relationship between two users regardless of
	// which of them initiated it.
	GetByPair(ctx context.Context, a, b uuid.UUID) (*friend.Friendship, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status friend.Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListFriends returns the accepted counterparts' profiles.
	ListFriends(ctx context.Context, userID uuid.UUID) ([]*user.User, error)
	// ListPending returns requests waiting on userID's answer.
	ListPending(ctx context.Context, userID uuid.UUID) ([]*friend.Friendship, error)
	// ListSent returns requests userID initiated that are still pending.
	ListSent(ctx context.Context, userID uuid.UUID) ([]*friend.Friendship, error)
}

// FriendService defines the interface for friendship business logic
type FriendService interface {
	SendRequest(ctx context.Context, requesterID, receiverID uuid.UUID) (*friend.Friendship, error)
	Accept(ctx context.Context, userID, requestID uuid.UUID) (*friend.Friendship, error)
	Decline(ctx context.Context, userID, requestID uuid.UUID) (*friend.Friendship, error)
	Remove(ctx context.Context, userID, otherID uuid.UUID) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]*user.User, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]*friend.Friendship, error)
	ListSent(ctx context.Context, userID uuid.UUID) ([]*friend.Friendship, error)
	ShareTargets(ctx context.Context, userID uuid.UUID) ([]chat.ShareTarget, error)
	// Invite emails someone who has no account yet; the pending request is
	// created when the invite is redeemed after signup.
	Invite(ctx context.Context, inviterID uuid.UUID, email string) error
	RedeemInvite(ctx context.Context, newUserID uuid.UUID, email, token string) (*friend.Friendship, error)
}

// InviteTokenRepository stores outstanding invites keyed by the invited
// email. Only the token's hash is persisted.
type InviteTokenRepository interface {
	Store(ctx context.Context, email, tokenHash string, inviterID uuid.UUID) error
	Get(ctx context.Context, email string) (tokenHash string, inviterID uuid.UUID, err error)
	Delete(ctx context.Context, email string) error
}
