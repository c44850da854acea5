package ports

import (
	"context"

	"github.com/driftchat/drift/internal/core/domain/chat"
	"github.com/google/uuid"
)

// ChatRepository defines the interface for chat data operations
type ChatRepository interface {
	Create(ctx context.Context, chatType chat.Type, memberIDs []uuid.UUID) (*chat.Chat, error)
	GetByID(ctx context.Context, id uuid.UUID) (*chat.Chat, error)
	// GetDirectByPair resolves the direct chat between two users, in either
	// order. chat.ErrNotFound when none exists yet.
	GetDirectByPair(ctx context.Context, a, b uuid.UUID) (*chat.Chat, error)
	GetAssistantByUser(ctx context.Context, userID uuid.UUID) (*chat.Chat, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*chat.Chat, error)
	IsMember(ctx context.Context, chatID, userID uuid.UUID) (bool, error)
	MemberIDs(ctx context.Context, chatID uuid.UUID) ([]uuid.UUID, error)
}

// ChatService defines the interface for chat business logic
type ChatService interface {
	// EnsureDirect returns the direct chat between two friends, creating it
	// on first use.
	EnsureDirect(ctx context.Context, a, b uuid.UUID) (*chat.Chat, error)
	// EnsureAssistant returns the user's AI-assistant chat, creating it on
	// first use.
	EnsureAssistant(ctx context.Context, userID uuid.UUID) (*chat.Chat, error)
	ListSummaries(ctx context.Context, userID uuid.UUID) ([]chat.Summary, error)
	RequireMember(ctx context.Context, chatID, userID uuid.UUID) (*chat.Chat, error)
}
