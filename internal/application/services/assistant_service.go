package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/driftchat/drift/internal/core/domain/message"
	"github.com/driftchat/drift/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	assistantSystemPrompt = "You are Drift's in-app assistant. Answer concisely and stay on topic."
	// assistantContextTurns bounds how much history each completion carries.
	assistantContextTurns = 20
)

type AssistantService struct {
	chats  ports.ChatService
	repo   ports.MessageRepository
	llm    ports.LLMClient
	logger *logrus.Logger
}

func NewAssistantService(chats ports.ChatService, repo ports.MessageRepository, llm ports.LLMClient, logger *logrus.Logger) ports.AssistantService {
	return &AssistantService{chats: chats, repo: repo, llm: llm, logger: logger}
}

// Send posts the user's prompt into their assistant chat and returns the
// assistant's reply. Both sides of the exchange are persisted as ordinary
// messages, so the chat renders and caches like any other.
func (s *AssistantService) Send(ctx context.Context, userID uuid.UUID, prompt string) (*message.Message, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, message.ErrEmptyBody
	}

	c, err := s.chats.EnsureAssistant(ctx, userID)
	if err != nil {
		return nil, err
	}

	userMsg := &message.Message{
		ID:        uuid.New(),
		ChatID:    c.ID,
		SenderID:  userID,
		Body:      prompt,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to store prompt: %w", err)
	}

	turns, err := s.contextTurns(ctx, c.ID, userID)
	if err != nil {
		return nil, err
	}

	reply, err := s.llm.Complete(ctx, turns)
	if err != nil {
		return nil, fmt.Errorf("assistant completion failed: %w", err)
	}

	assistantMsg := &message.Message{
		ID:        uuid.New(),
		ChatID:    c.ID,
		SenderID:  message.AssistantSenderID,
		Body:      reply,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to store reply: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"chat_id": c.ID, "user_id": userID}).Debug("assistant exchange completed")
	return assistantMsg, nil
}

func (s *AssistantService) History(ctx context.Context, userID uuid.UUID, limit int) ([]message.Message, error) {
	c, err := s.chats.EnsureAssistant(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultWindowLimit
	}
	return s.repo.ListByChat(ctx, c.ID, "", limit)
}

// contextTurns renders the recent history oldest-first for the model, with
// the system prompt up front.
func (s *AssistantService) contextTurns(ctx context.Context, chatID, userID uuid.UUID) ([]ports.ChatTurn, error) {
	recent, err := s.repo.ListByChat(ctx, chatID, "", assistantContextTurns)
	if err != nil {
		return nil, fmt.Errorf("failed to load assistant history: %w", err)
	}

	turns := make([]ports.ChatTurn, 0, len(recent)+1)
	turns = append(turns, ports.ChatTurn{Role: "system", Content: assistantSystemPrompt})
	for i := len(recent) - 1; i >= 0; i-- {
		role := "user"
		if recent[i].SenderID == message.AssistantSenderID {
			role = "assistant"
		}
		turns = append(turns, ports.ChatTurn{Role: role, Content: recent[i].Body})
	}
	return turns, nil
}
