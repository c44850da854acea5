package ports

import (
	"context"

	"github.com/driftchat/drift/internal/core/domain/message"
	"github.com/google/uuid"
)

// ReactionAuthority is the authoritative toggle/read pair for reactions.
// The optimistic engine treats both as opaque remote calls with two
// outcomes: success-with-data or failure. Server truth always wins over the
// locally-computed guess.
type ReactionAuthority interface {
	// ToggleReaction applies the toggle and returns the resulting totals
	// plus the caller's active reaction.
	ToggleReaction(ctx context.Context, messageID, userID uuid.UUID, r message.Reaction) (message.ReactionState, error)
	// ReadReactions returns the current totals and the caller's reaction.
	ReadReactions(ctx context.Context, messageID, userID uuid.UUID) (message.ReactionState, error)
}

// MessageRepository defines the interface for message data operations
type MessageRepository interface {
	ReactionAuthority

	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error)
	// ListByChat returns up to limit messages, newest first, older than the
	// cursor when before is a message id.
	ListByChat(ctx context.Context, chatID uuid.UUID, before string, limit int) ([]message.Message, error)
	MarkRead(ctx context.Context, chatID, userID uuid.UUID, messageIDs []uuid.UUID) error
	// ReadSetFor returns the ids of messages in the chat that userID has read.
	ReadSetFor(ctx context.Context, chatID, userID uuid.UUID) (message.ReadSet, error)
}

// MessageService defines the interface for messaging business logic
type MessageService interface {
	Send(ctx context.Context, chatID, senderID uuid.UUID, body string) (*message.Message, error)
	ListWindow(ctx context.Context, chatID, viewerID uuid.UUID, before string, limit int) ([]message.Message, error)
	MarkRead(ctx context.Context, chatID, viewerID uuid.UUID, messageIDs []uuid.UUID) error
	Receipts(ctx context.Context, chatID, viewerID uuid.UUID) ([]message.Receipt, error)
	Unread(ctx context.Context, chatID, viewerID uuid.UUID) (int, error)
}

// ReactionService is the optimistic reaction engine's public face.
type ReactionService interface {
	// Toggle applies the optimistic protocol: the provisional state is
	// visible in the cache immediately, the authoritative call follows. On
	// success the returned state is server truth; on failure the cache is
	// rolled back to the pre-toggle state and the error is returned.
	Toggle(ctx context.Context, messageID, viewerID uuid.UUID, r message.Reaction) (message.ReactionState, error)
	Get(ctx context.Context, messageID, viewerID uuid.UUID) (message.ReactionState, error)
	// Totals returns the viewer-independent counters, shared across all
	// viewers through one cache entry.
	Totals(ctx context.Context, messageID uuid.UUID) (message.ReactionState, error)
}

// AssistantService drives AI-assistant conversations.
type AssistantService interface {
	Send(ctx context.Context, userID uuid.UUID, prompt string) (*message.Message, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]message.Message, error)
}
