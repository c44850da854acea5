package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/driftchat/drift/internal/core/domain/message"
	"github.com/driftchat/drift/internal/core/ports"
	"github.com/driftchat/drift/internal/infrastructure/db"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MessageRepository implements message persistence and is the authoritative
// source for reaction toggles: the returned totals reflect every user's
// reactions at commit time, which is why server truth always overwrites the
// optimistic guess.
type MessageRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(database *db.Database, logger *logrus.Logger) ports.MessageRepository {
	return &MessageRepository{
		db:     database,
		logger: logger,
	}
}

// Create inserts a message
func (r *MessageRepository) Create(ctx context.Context, m *message.Message) error {
	err := r.db.DB.QueryRowxContext(ctx,
		`INSERT INTO messages (id, chat_id, sender_id, body) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		m.ID, m.ChatID, m.SenderID, m.Body,
	).Scan(&m.CreatedAt)
	if err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"chat_id": m.ChatID, "sender_id": m.SenderID}).WithError(err).Error("db: failed to create message")
		}
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetByID retrieves a message by id
func (r *MessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	var m message.Message
	err := r.db.DB.GetContext(ctx, &m,
		`SELECT id, chat_id, sender_id, body, created_at FROM messages WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, message.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &m, nil
}

// ListByChat returns up to limit messages, newest first. When before names a
// message id, only messages older than it are returned.
func (r *MessageRepository) ListByChat(ctx context.Context, chatID uuid.UUID, before string, limit int) ([]message.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	var msgs []message.Message
	if before == "" {
		query := `
			SELECT id, chat_id, sender_id, body, created_at
			FROM messages
			WHERE chat_id = $1
			ORDER BY created_at DESC
			LIMIT $2`
		if err := r.db.DB.SelectContext(ctx, &msgs, query, chatID, limit); err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}
		return msgs, nil
	}

	beforeID, err := uuid.Parse(before)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor %q: %w", before, err)
	}
	query := `
		SELECT id, chat_id, sender_id, body, created_at
		FROM messages
		WHERE chat_id = $1
		  AND created_at < (SELECT created_at FROM messages WHERE id = $2)
		ORDER BY created_at DESC
		LIMIT $3`
	if err := r.db.DB.SelectContext(ctx, &msgs, query, chatID, beforeID, limit); err != nil {
		return nil, fmt.Errorf("failed to list messages before cursor: %w", err)
	}
	return msgs, nil
}

// MarkRead records read marks; re-marking an already read message is a
// no-op.
func (r *MessageRepository) MarkRead(ctx context.Context, chatID, userID uuid.UUID, messageIDs []uuid.UUID) error {
	if len(messageIDs) == 0 {
		return nil
	}
	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range messageIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO message_reads (message_id, chat_id, user_id) VALUES ($1, $2, $3)
			 ON CONFLICT (message_id, user_id) DO NOTHING`,
			id, chatID, userID,
		); err != nil {
			return fmt.Errorf("failed to mark message read: %w", err)
		}
	}
	return tx.Commit()
}

// ReadSetFor returns the ids of the chat's messages that userID has read.
func (r *MessageRepository) ReadSetFor(ctx context.Context, chatID, userID uuid.UUID) (message.ReadSet, error) {
	var ids []uuid.UUID
	query := `
		SELECT message_id FROM message_reads
		WHERE chat_id = $1 AND user_id = $2`

	if err := r.db.DB.SelectContext(ctx, &ids, query, chatID, userID); err != nil {
		return nil, fmt.Errorf("failed to load read set: %w", err)
	}
	return message.NewReadSet(ids), nil
}

// ToggleReaction implements ports.ReactionAuthority. The whole toggle runs
// in one transaction so the returned totals are consistent with the row
// state this toggle produced.
func (r *MessageRepository) ToggleReaction(ctx context.Context, messageID, userID uuid.UUID, reaction message.Reaction) (message.ReactionState, error) {
	if !reaction.IsValid() {
		return message.ReactionState{}, fmt.Errorf("invalid reaction %q", reaction)
	}

	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return message.ReactionState{}, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.GetContext(ctx, &current,
		`SELECT reaction FROM message_reactions WHERE message_id = $1 AND user_id = $2 FOR UPDATE`,
		messageID, userID)
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO message_reactions (message_id, user_id, reaction) VALUES ($1, $2, $3)`,
			messageID, userID, reaction)
	case err != nil:
		return message.ReactionState{}, fmt.Errorf("failed to read current reaction: %w", err)
	case message.Reaction(current) == reaction:
		// Toggling the active reaction clears it.
		_, err = tx.ExecContext(ctx,
			`DELETE FROM message_reactions WHERE message_id = $1 AND user_id = $2`,
			messageID, userID)
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE message_reactions SET reaction = $3 WHERE message_id = $1 AND user_id = $2`,
			messageID, userID, reaction)
	}
	if err != nil {
		return message.ReactionState{}, fmt.Errorf("failed to toggle reaction: %w", err)
	}

	state, err := countReactions(ctx, tx, messageID, userID)
	if err != nil {
		return message.ReactionState{}, err
	}
	if err := tx.Commit(); err != nil {
		return message.ReactionState{}, fmt.Errorf("failed to commit reaction toggle: %w", err)
	}
	return state, nil
}

// ReadReactions implements ports.ReactionAuthority.
func (r *MessageRepository) ReadReactions(ctx context.Context, messageID, userID uuid.UUID) (message.ReactionState, error) {
	return countReactions(ctx, r.db.DB, messageID, userID)
}

type sqlxGetter interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func countReactions(ctx context.Context, q sqlxGetter, messageID, userID uuid.UUID) (message.ReactionState, error) {
	var row struct {
		Likes    int            `db:"likes"`
		Dislikes int            `db:"dislikes"`
		Own      sql.NullString `db:"own"`
	}
	query := `
		SELECT
			COUNT(*) FILTER (WHERE reaction = 'like')    AS likes,
			COUNT(*) FILTER (WHERE reaction = 'dislike') AS dislikes,
			MAX(reaction) FILTER (WHERE user_id = $2)    AS own
		FROM message_reactions
		WHERE message_id = $1`

	if err := q.GetContext(ctx, &row, query, messageID, userID); err != nil {
		return message.ReactionState{}, fmt.Errorf("failed to count reactions: %w", err)
	}

	state := message.ReactionState{
		Likes:        row.Likes,
		Dislikes:     row.Dislikes,
		UserReaction: message.ReactionNone,
	}
	if row.Own.Valid {
		state.UserReaction = message.Reaction(row.Own.String)
	}
	return state, nil
}
