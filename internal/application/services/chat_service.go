package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/driftchat/drift/internal/core/domain/chat"
	"github.com/driftchat/drift/internal/core/domain/friend"
	"github.com/driftchat/drift/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ChatService struct {
	repo       ports.ChatRepository
	friendRepo ports.FriendRepository
	messages   ports.MessageService
	logger     *logrus.Logger
}

func NewChatService(repo ports.ChatRepository, friendRepo ports.FriendRepository, messages ports.MessageService, logger *logrus.Logger) ports.ChatService {
	return &ChatService{repo: repo, friendRepo: friendRepo, messages: messages, logger: logger}
}

// EnsureDirect returns the direct chat between a and b, creating it the
// first time they talk. Both users must be accepted friends.
func (s *ChatService) EnsureDirect(ctx context.Context, a, b uuid.UUID) (*chat.Chat, error) {
	c, err := s.repo.GetDirectByPair(ctx, a, b)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, chat.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve direct chat: %w", err)
	}

	f, err := s.friendRepo.GetByPair(ctx, a, b)
	if err != nil || f.Status != friend.StatusAccepted {
		return nil, friend.ErrNotFound
	}

	c, err = s.repo.Create(ctx, chat.TypeDirect, []uuid.UUID{a, b})
	if err != nil {
		return nil, fmt.Errorf("failed to create direct chat: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"chat_id": c.ID}).Info("direct chat created")
	return c, nil
}

func (s *ChatService) EnsureAssistant(ctx context.Context, userID uuid.UUID) (*chat.Chat, error) {
	c, err := s.repo.GetAssistantByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, chat.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve assistant chat: %w", err)
	}

	c, err = s.repo.Create(ctx, chat.TypeAssistant, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant chat: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"chat_id": c.ID, "user_id": userID}).Info("assistant chat created")
	return c, nil
}

// ListSummaries returns every chat the user belongs to with the counterpart
// id and the user's unread count.
func (s *ChatService) ListSummaries(ctx context.Context, userID uuid.UUID) ([]chat.Summary, error) {
	chats, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	summaries := make([]chat.Summary, 0, len(chats))
	for _, c := range chats {
		summary := chat.Summary{Chat: *c}

		if c.Type == chat.TypeDirect {
			members, err := s.repo.MemberIDs(ctx, c.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to list chat members: %w", err)
			}
			for _, id := range members {
				if id != userID {
					other := id
					summary.OtherUserID = &other
					break
				}
			}
		}

		unread, err := s.messages.Unread(ctx, c.ID, userID)
		if err != nil {
			// A summary with a missing badge beats a failed chat list.
			s.logger.WithFields(logrus.Fields{"chat_id": c.ID, "user_id": userID}).WithError(err).Warn("failed to compute unread count")
		} else {
			summary.UnreadCount = unread
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// RequireMember loads the chat and verifies userID belongs to it.
func (s *ChatService) RequireMember(ctx context.Context, chatID, userID uuid.UUID) (*chat.Chat, error) {
	c, err := s.repo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.IsMember(ctx, chatID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check chat membership: %w", err)
	}
	if !ok {
		return nil, chat.ErrNotMember
	}
	return c, nil
}
