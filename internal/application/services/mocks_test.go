package services_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/driftchat/drift/internal/core/domain/chat"
	"github.com/driftchat/drift/internal/core/domain/friend"
	"github.com/driftchat/drift/internal/core/domain/message"
	"github.com/driftchat/drift/internal/core/domain/user"
)

// mapCache is a minimal in-memory ports.Cache for service tests. TTLs are
// ignored; invalidation behavior is what the tests observe.
type mapCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{m: make(map[string][]byte)} }

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = append([]byte(nil), value...)
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
	return nil
}

func (c *mapCache) ClearPattern(ctx context.Context, substring string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.m {
		if strings.Contains(k, substring) {
			delete(c.m, k)
		}
	}
	return nil
}

type reactionAuthorityMock struct {
	toggleFn func(ctx context.Context, messageID, userID uuid.UUID, r message.Reaction) (message.ReactionState, error)
	readFn   func(ctx context.Context, messageID, userID uuid.UUID) (message.ReactionState, error)
}

func (m *reactionAuthorityMock) ToggleReaction(ctx context.Context, messageID, userID uuid.UUID, r message.Reaction) (message.ReactionState, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, messageID, userID, r)
	}
	return message.ReactionState{UserReaction: message.ReactionNone}, nil
}

func (m *reactionAuthorityMock) ReadReactions(ctx context.Context, messageID, userID uuid.UUID) (message.ReactionState, error) {
	if m.readFn != nil {
		return m.readFn(ctx, messageID, userID)
	}
	return message.ReactionState{UserReaction: message.ReactionNone}, nil
}

type userRepoMock struct {
	createFn     func(ctx context.Context, u *user.User) error
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*user.User, error)
	getByEmailFn func(ctx context.Context, email string) (*user.User, error)
	updateFn     func(ctx context.Context, u *user.User) error
}

func (m *userRepoMock) Create(ctx context.Context, u *user.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	return nil
}

func (m *userRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &user.User{ID: id, DisplayName: "someone"}, nil
}

func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, friend.ErrNotFound
}

func (m *userRepoMock) Update(ctx context.Context, u *user.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, u)
	}
	return nil
}

type friendRepoMock struct {
	createFn       func(ctx context.Context, f *friend.Friendship) error
	getByIDFn      func(ctx context.Context, id uuid.UUID) (*friend.Friendship, error)
	getByPairFn    func(ctx context.Context, a, b uuid.UUID) (*friend.Friendship, error)
	updateStatusFn func(ctx context.Context, id uuid.UUID, status friend.Status) error
	deleteFn       func(ctx context.Context, id uuid.UUID) error
	listFriendsFn  func(ctx context.Context, userID uuid.UUID) ([]*user.User, error)
}

func (m *friendRepoMock) Create(ctx context.Context, f *friend.Friendship) error {
	if m.createFn != nil {
		return m.createFn(ctx, f)
	}
	return nil
}

func (m *friendRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*friend.Friendship, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, friend.ErrNotFound
}

func (m *friendRepoMock) GetByPair(ctx context.Context, a, b uuid.UUID) (*friend.Friendship, error) {
	if m.getByPairFn != nil {
		return m.getByPairFn(ctx, a, b)
	}
	return nil, friend.ErrNotFound
}

func (m *friendRepoMock) UpdateStatus(ctx context.Context, id uuid.UUID, status friend.Status) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (m *friendRepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *friendRepoMock) ListFriends(ctx context.Context, userID uuid.UUID) ([]*user.User, error) {
	if m.listFriendsFn != nil {
		return m.listFriendsFn(ctx, userID)
	}
	return nil, nil
}

func (m *friendRepoMock) ListPending(ctx context.Context, userID uuid.UUID) ([]*friend.Friendship, error) {
	return nil, nil
}

func (m *friendRepoMock) ListSent(ctx context.Context, userID uuid.UUID) ([]*friend.Friendship, error) {
	return nil, nil
}

type chatRepoMock struct {
	createFn          func(ctx context.Context, chatType chat.Type, memberIDs []uuid.UUID) (*chat.Chat, error)
	getDirectByPairFn func(ctx context.Context, a, b uuid.UUID) (*chat.Chat, error)
	isMemberFn        func(ctx context.Context, chatID, userID uuid.UUID) (bool, error)
	memberIDsFn       func(ctx context.Context, chatID uuid.UUID) ([]uuid.UUID, error)
}

func (m *chatRepoMock) Create(ctx context.Context, chatType chat.Type, memberIDs []uuid.UUID) (*chat.Chat, error) {
	if m.createFn != nil {
		return m.createFn(ctx, chatType, memberIDs)
	}
	return &chat.Chat{ID: uuid.New(), Type: chatType}, nil
}

func (m *chatRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*chat.Chat, error) {
	return &chat.Chat{ID: id, Type: chat.TypeDirect}, nil
}

func (m *chatRepoMock) GetDirectByPair(ctx context.Context, a, b uuid.UUID) (*chat.Chat, error) {
	if m.getDirectByPairFn != nil {
		return m.getDirectByPairFn(ctx, a, b)
	}
	return nil, chat.ErrNotFound
}

func (m *chatRepoMock) GetAssistantByUser(ctx context.Context, userID uuid.UUID) (*chat.Chat, error) {
	return nil, chat.ErrNotFound
}

func (m *chatRepoMock) ListByUser(ctx context.Context, userID uuid.UUID) ([]*chat.Chat, error) {
	return nil, nil
}

func (m *chatRepoMock) IsMember(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	if m.isMemberFn != nil {
		return m.isMemberFn(ctx, chatID, userID)
	}
	return true, nil
}

func (m *chatRepoMock) MemberIDs(ctx context.Context, chatID uuid.UUID) ([]uuid.UUID, error) {
	if m.memberIDsFn != nil {
		return m.memberIDsFn(ctx, chatID)
	}
	return nil, nil
}

type messageRepoMock struct {
	reactionAuthorityMock

	createFn     func(ctx context.Context, msg *message.Message) error
	listByChatFn func(ctx context.Context, chatID uuid.UUID, before string, limit int) ([]message.Message, error)
	markReadFn   func(ctx context.Context, chatID, userID uuid.UUID, messageIDs []uuid.UUID) error
	readSetForFn func(ctx context.Context, chatID, userID uuid.UUID) (message.ReadSet, error)
}

func (m *messageRepoMock) Create(ctx context.Context, msg *message.Message) error {
	if m.createFn != nil {
		return m.createFn(ctx, msg)
	}
	return nil
}

func (m *messageRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	return nil, message.ErrNotFound
}

func (m *messageRepoMock) ListByChat(ctx context.Context, chatID uuid.UUID, before string, limit int) ([]message.Message, error) {
	if m.listByChatFn != nil {
		return m.listByChatFn(ctx, chatID, before, limit)
	}
	return nil, nil
}

func (m *messageRepoMock) MarkRead(ctx context.Context, chatID, userID uuid.UUID, messageIDs []uuid.UUID) error {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, chatID, userID, messageIDs)
	}
	return nil
}

func (m *messageRepoMock) ReadSetFor(ctx context.Context, chatID, userID uuid.UUID) (message.ReadSet, error) {
	if m.readSetForFn != nil {
		return m.readSetForFn(ctx, chatID, userID)
	}
	return message.NewReadSet(nil), nil
}

type emailServiceMock struct {
	sendFriendReqFn func(ctx context.Context, toEmail, fromDisplayName string) error
	sendInviteFn    func(ctx context.Context, toEmail, fromDisplayName, inviteURL string) error
}

func (m *emailServiceMock) SendFriendRequestNotification(ctx context.Context, toEmail, fromDisplayName string) error {
	if m.sendFriendReqFn != nil {
		return m.sendFriendReqFn(ctx, toEmail, fromDisplayName)
	}
	return nil
}

func (m *emailServiceMock) SendInvite(ctx context.Context, toEmail, fromDisplayName, inviteURL string) error {
	if m.sendInviteFn != nil {
		return m.sendInviteFn(ctx, toEmail, fromDisplayName, inviteURL)
	}
	return nil
}

type inviteTokenRepoMock struct {
	storeFn  func(ctx context.Context, email, tokenHash string, inviterID uuid.UUID) error
	getFn    func(ctx context.Context, email string) (string, uuid.UUID, error)
	deleteFn func(ctx context.Context, email string) error
}

func (m *inviteTokenRepoMock) Store(ctx context.Context, email, tokenHash string, inviterID uuid.UUID) error {
	if m.storeFn != nil {
		return m.storeFn(ctx, email, tokenHash, inviterID)
	}
	return nil
}

func (m *inviteTokenRepoMock) Get(ctx context.Context, email string) (string, uuid.UUID, error) {
	if m.getFn != nil {
		return m.getFn(ctx, email)
	}
	return "", uuid.Nil, friend.ErrNotFound
}

func (m *inviteTokenRepoMock) Delete(ctx context.Context, email string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, email)
	}
	return nil
}
