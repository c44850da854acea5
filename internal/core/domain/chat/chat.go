package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("chat not found")
	ErrNotMember = errors.New("user is not a member of this chat")
)

type Type string

const (
	// TypeDirect is a two-party conversation between friends.
	TypeDirect Type = "direct"
	// TypeAssistant is a conversation between one user and the AI assistant.
	TypeAssistant Type = "assistant"
)

type Chat struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Type      Type      `json:"type" db:"type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Member is one participant row. Direct chats have exactly two members;
// assistant chats have one (the assistant side is implicit).
type Member struct {
	ChatID   uuid.UUID `json:"chat_id" db:"chat_id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// Summary is what chat lists render: the chat plus the counterpart (nil for
// assistant chats) and the viewer's unread count.
type Summary struct {
	Chat        Chat       `json:"chat"`
	OtherUserID *uuid.UUID `json:"other_user_id,omitempty"`
	UnreadCount int        `json:"unread_count"`
}

// ShareTarget is a friend a message can be forwarded to.
type ShareTarget struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	ChatID      uuid.UUID `json:"chat_id"`
}
