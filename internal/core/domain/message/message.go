package message

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("message not found")
	ErrEmptyBody = errors.New("message body is empty")
)

// AssistantSenderID marks messages authored by the AI assistant. Assistant
// chats have a single human member, so the zero uuid is unambiguous.
var AssistantSenderID = uuid.Nil

type Message struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ChatID    uuid.UUID `json:"chat_id" db:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id" db:"sender_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SendRequest is the payload for posting a message to a chat.
type SendRequest struct {
	Body string `json:"body" validate:"required"`
}

// ReadMark records that a user has read a message.
type ReadMark struct {
	MessageID uuid.UUID `json:"message_id" db:"message_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ReadAt    time.Time `json:"read_at" db:"read_at"`
}
