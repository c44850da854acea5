package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/driftchat/drift/internal/core/domain/chat"
	"github.com/driftchat/drift/internal/core/domain/friend"
	"github.com/driftchat/drift/internal/core/ports"
	"github.com/driftchat/drift/internal/infrastructure/db"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ChatRepository implements the chat repository interface
type ChatRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewChatRepository creates a new chat repository
func NewChatRepository(database *db.Database, logger *logrus.Logger) ports.ChatRepository {
	return &ChatRepository{
		db:     database,
		logger: logger,
	}
}

// Create inserts a chat and its member rows in one transaction.
func (r *ChatRepository) Create(ctx context.Context, chatType chat.Type, memberIDs []uuid.UUID) (*chat.Chat, error) {
	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	c := &chat.Chat{ID: uuid.New(), Type: chatType}
	if err := tx.QueryRowxContext(ctx,
		`INSERT INTO chats (id, type) VALUES ($1, $2) RETURNING created_at`,
		c.ID, c.Type,
	).Scan(&c.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	for _, userID := range memberIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_members (chat_id, user_id) VALUES ($1, $2)`,
			c.ID, userID,
		); err != nil {
			return nil, fmt.Errorf("failed to add chat member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit chat creation: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"chat_id": c.ID, "type": chatType, "members": len(memberIDs)}).Info("db: chat created")
	}
	return c, nil
}

// GetByID retrieves a chat by id
func (r *ChatRepository) GetByID(ctx context.Context, id uuid.UUID) (*chat.Chat, error) {
	var c chat.Chat
	err := r.db.DB.GetContext(ctx, &c, `SELECT id, type, created_at FROM chats WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, chat.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return &c, nil
}

// GetDirectByPair resolves the direct chat between two users, in either order.
func (r *ChatRepository) GetDirectByPair(ctx context.Context, a, b uuid.UUID) (*chat.Chat, error) {
	ua, ub := friend.CanonicalPair(a, b)
	var c chat.Chat
	query := `
		SELECT c.id, c.type, c.created_at
		FROM chats c
		JOIN chat_members m1 ON m1.chat_id = c.id AND m1.user_id = $1
		JOIN chat_members m2 ON m2.chat_id = c.id AND m2.user_id = $2
		WHERE c.type = 'direct'
		LIMIT 1`

	err := r.db.DB.GetContext(ctx, &c, query, ua, ub)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, chat.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get direct chat: %w", err)
	}
	return &c, nil
}

// GetAssistantByUser resolves the user's assistant chat.
func (r *ChatRepository) GetAssistantByUser(ctx context.Context, userID uuid.UUID) (*chat.Chat, error) {
	var c chat.Chat
	query := `
		SELECT c.id, c.type, c.created_at
		FROM chats c
		JOIN chat_members m ON m.chat_id = c.id AND m.user_id = $1
		WHERE c.type = 'assistant'
		LIMIT 1`

	err := r.db.DB.GetContext(ctx, &c, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, chat.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assistant chat: %w", err)
	}
	return &c, nil
}

// ListByUser returns every chat the user is a member of, newest first.
func (r *ChatRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*chat.Chat, error) {
	var chats []*chat.Chat
	query := `
		SELECT c.id, c.type, c.created_at
		FROM chats c
		JOIN chat_members m ON m.chat_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.created_at DESC`

	if err := r.db.DB.SelectContext(ctx, &chats, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// IsMember reports whether userID belongs to the chat.
func (r *ChatRepository) IsMember(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	var n int
	err := r.db.DB.GetContext(ctx, &n,
		`SELECT COUNT(1) FROM chat_members WHERE chat_id = $1 AND user_id = $2`,
		chatID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check chat membership: %w", err)
	}
	return n > 0, nil
}

// MemberIDs returns the chat's member user ids.
func (r *ChatRepository) MemberIDs(ctx context.Context, chatID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.DB.SelectContext(ctx, &ids,
		`SELECT user_id FROM chat_members WHERE chat_id = $1`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat members: %w", err)
	}
	return ids, nil
}
