package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/driftchat/drift/internal/core/cachekey"
	"github.com/driftchat/drift/internal/core/domain/chat"
	"github.com/driftchat/drift/internal/core/domain/message"
	"github.com/driftchat/drift/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultWindowLimit = 50
	maxWindowLimit     = 200
	// receiptScanLimit bounds how far back receipts and unread counts look.
	// Older messages keep whatever badge they last rendered with.
	receiptScanLimit = 200
)

type MessageService struct {
	repo     ports.MessageRepository
	chatRepo ports.ChatRepository
	cache    ports.Cache
	logger   *logrus.Logger
}

func NewMessageService(repo ports.MessageRepository, chatRepo ports.ChatRepository, cache ports.Cache, logger *logrus.Logger) ports.MessageService {
	return &MessageService{repo: repo, chatRepo: chatRepo, cache: cache, logger: logger}
}

func (s *MessageService) Send(ctx context.Context, chatID, senderID uuid.UUID, body string) (*message.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, message.ErrEmptyBody
	}
	if err := s.requireMember(ctx, chatID, senderID); err != nil {
		return nil, err
	}

	m := &message.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		SenderID:  senderID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return m, nil
}

func (s *MessageService) ListWindow(ctx context.Context, chatID, viewerID uuid.UUID, before string, limit int) ([]message.Message, error) {
	if err := s.requireMember(ctx, chatID, viewerID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultWindowLimit
	}
	if limit > maxWindowLimit {
		limit = maxWindowLimit
	}
	return s.repo.ListByChat(ctx, chatID, before, limit)
}

func (s *MessageService) MarkRead(ctx context.Context, chatID, viewerID uuid.UUID, messageIDs []uuid.UUID) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := s.requireMember(ctx, chatID, viewerID); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, chatID, viewerID, messageIDs)
}

// Receipts computes delivery badges for the viewer's recent outgoing
// messages against the counterpart's read set.
func (s *MessageService) Receipts(ctx context.Context, chatID, viewerID uuid.UUID) ([]message.Receipt, error) {
	if err := s.requireMember(ctx, chatID, viewerID); err != nil {
		return nil, err
	}

	msgs, err := s.repo.ListByChat(ctx, chatID, "", receiptScanLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	counterpartRead := message.NewReadSet(nil)
	counterpart, err := s.counterpartOf(ctx, chatID, viewerID)
	if err != nil {
		return nil, err
	}
	if counterpart != uuid.Nil {
		counterpartRead, err = s.repo.ReadSetFor(ctx, chatID, counterpart)
		if err != nil {
			return nil, fmt.Errorf("failed to load read set: %w", err)
		}
	}

	return message.AggregateReceipts(msgs, viewerID, counterpartRead), nil
}

// Unread returns the viewer's unread count for the chat, cached under a key
// the message-posted and read-marked invalidations both reach.
func (s *MessageService) Unread(ctx context.Context, chatID, viewerID uuid.UUID) (int, error) {
	if err := s.requireMember(ctx, chatID, viewerID); err != nil {
		return 0, err
	}

	key := cachekey.Unread(chatID, viewerID)
	if b, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var n int
		if err := json.Unmarshal(b, &n); err == nil {
			return n, nil
		}
	}

	msgs, err := s.repo.ListByChat(ctx, chatID, "", receiptScanLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to load messages: %w", err)
	}
	viewerRead, err := s.repo.ReadSetFor(ctx, chatID, viewerID)
	if err != nil {
		return 0, fmt.Errorf("failed to load read set: %w", err)
	}

	n := message.UnreadCount(msgs, viewerID, viewerRead)
	if b, err := json.Marshal(n); err == nil {
		if err := s.cache.Set(ctx, key, b, cachekey.TTLShort); err != nil {
			s.logger.WithFields(logrus.Fields{"key": key}).WithError(err).Warn("failed to cache unread count")
		}
	}
	return n, nil
}

func (s *MessageService) requireMember(ctx context.Context, chatID, userID uuid.UUID) error {
	ok, err := s.chatRepo.IsMember(ctx, chatID, userID)
	if err != nil {
		return fmt.Errorf("failed to check chat membership: %w", err)
	}
	if !ok {
		return chat.ErrNotMember
	}
	return nil
}

// counterpartOf returns the other member of a direct chat, or uuid.Nil for
// assistant chats where there is no human counterpart.
func (s *MessageService) counterpartOf(ctx context.Context, chatID, viewerID uuid.UUID) (uuid.UUID, error) {
	members, err := s.chatRepo.MemberIDs(ctx, chatID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to list chat members: %w", err)
	}
	for _, id := range members {
		if id != viewerID {
			return id, nil
		}
	}
	return uuid.Nil, nil
}
