package repositories

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/driftchat/drift/internal/application/invalidation"
	"github.com/driftchat/drift/internal/core/cachekey"
	"github.com/driftchat/drift/internal/core/domain/friend"
	"github.com/driftchat/drift/internal/core/domain/message"
	"github.com/driftchat/drift/internal/core/domain/user"
	"github.com/driftchat/drift/internal/core/ports"
	"github.com/google/uuid"
)

var sf singleflight.Group

// Utility helpers
func cacheSetSilently(c ports.Cache, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

func cacheGet[T any](c ports.Cache, ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// loadListWithSingleflight coalesces a list load: concurrent misses for the
// same key run the loader once, and every caller gets the cached result.
func loadListWithSingleflight[T any](cache ports.Cache, ctx context.Context, key string, ttl time.Duration, loader func() ([]T, error)) ([]T, error) {
	if v, ok := cacheGet[[]T](cache, ctx, key); ok {
		return *v, nil
	}
	res, err, _ := sf.Do(key, func() (any, error) {
		if v, ok := cacheGet[[]T](cache, ctx, key); ok {
			return *v, nil
		}
		all, err := loader()
		if err != nil {
			return nil, err
		}
		cacheSetSilently(cache, ctx, key, all, ttl)
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]T), nil
}

// CachingUserRepository decorates a UserRepository with cache-aside profile
// reads. Mutations route through the invalidation router.
type CachingUserRepository struct {
	inner  ports.UserRepository
	cache  ports.Cache
	router *invalidation.Router
}

func NewCachingUserRepository(inner ports.UserRepository, cache ports.Cache, router *invalidation.Router) ports.UserRepository {
	return &CachingUserRepository{inner: inner, cache: cache, router: router}
}

func (c *CachingUserRepository) Create(ctx context.Context, u *user.User) error {
	return c.inner.Create(ctx, u)
}

func (c *CachingUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	key := cachekey.Profile(id)
	if v, ok := cacheGet[user.User](c.cache, ctx, key); ok {
		return v, nil
	}
	u, err := c.inner.GetByID(ctx, id)
	if err == nil {
		cacheSetSilently(c.cache, ctx, key, u, cachekey.TTLDefault)
	}
	return u, err
}

// GetByEmail is a rare path (invite redemption); it goes straight through.
func (c *CachingUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return c.inner.GetByEmail(ctx, email)
}

func (c *CachingUserRepository) Update(ctx context.Context, u *user.User) error {
	if err := c.inner.Update(ctx, u); err != nil {
		return err
	}
	c.router.Apply(ctx, invalidation.ProfileUpdated{UserID: u.ID})
	return nil
}

// CachingFriendRepository decorates a FriendRepository. List reads are the
// hot path (rendered on every page), so they are cached with the short TTL
// and coalesced; every mutation invalidates both parties' views.
type CachingFriendRepository struct {
	inner  ports.FriendRepository
	cache  ports.Cache
	router *invalidation.Router
}

func NewCachingFriendRepository(inner ports.FriendRepository, cache ports.Cache, router *invalidation.Router) ports.FriendRepository {
	return &CachingFriendRepository{inner: inner, cache: cache, router: router}
}

func (c *CachingFriendRepository) Create(ctx context.Context, f *friend.Friendship) error {
	if err := c.inner.Create(ctx, f); err != nil {
		return err
	}
	c.router.Apply(ctx, invalidation.FriendshipChanged{RequesterID: f.RequesterID, ReceiverID: f.ReceiverID})
	return nil
}

func (c *CachingFriendRepository) GetByID(ctx context.Context, id uuid.UUID) (*friend.Friendship, error) {
	return c.inner.GetByID(ctx, id)
}

func (c *CachingFriendRepository) GetByPair(ctx context.Context, a, b uuid.UUID) (*friend.Friendship, error) {
	key := cachekey.FriendshipStatus(a, b)
	if v, ok := cacheGet[friend.Friendship](c.cache, ctx, key); ok {
		return v, nil
	}
	f, err := c.inner.GetByPair(ctx, a, b)
	if err == nil {
		cacheSetSilently(c.cache, ctx, key, f, cachekey.TTLShort)
	}
	return f, err
}

func (c *CachingFriendRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status friend.Status) error {
	f, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := c.inner.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	c.router.Apply(ctx, invalidation.FriendshipChanged{RequesterID: f.RequesterID, ReceiverID: f.ReceiverID})
	return nil
}

func (c *CachingFriendRepository) Delete(ctx context.Context, id uuid.UUID) error {
	f, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.router.Apply(ctx, invalidation.FriendshipChanged{RequesterID: f.RequesterID, ReceiverID: f.ReceiverID})
	return nil
}

func (c *CachingFriendRepository) ListFriends(ctx context.Context, userID uuid.UUID) ([]*user.User, error) {
	return loadListWithSingleflight(c.cache, ctx, cachekey.Friends(userID), cachekey.TTLShort, func() ([]*user.User, error) {
		return c.inner.ListFriends(ctx, userID)
	})
}

func (c *CachingFriendRepository) ListPending(ctx context.Context, userID uuid.UUID) ([]*friend.Friendship, error) {
	return loadListWithSingleflight(c.cache, ctx, cachekey.PendingRequests(userID), cachekey.TTLShort, func() ([]*friend.Friendship, error) {
		return c.inner.ListPending(ctx, userID)
	})
}

func (c *CachingFriendRepository) ListSent(ctx context.Context, userID uuid.UUID) ([]*friend.Friendship, error) {
	return loadListWithSingleflight(c.cache, ctx, cachekey.SentRequests(userID), cachekey.TTLShort, func() ([]*friend.Friendship, error) {
		return c.inner.ListSent(ctx, userID)
	})
}

// CachingMessageRepository decorates a MessageRepository. Message windows
// are cached per page; posting or reading routes the chat's keys through
// the router. Reaction calls pass straight through — the optimistic engine
// owns those cache entries.
type CachingMessageRepository struct {
	inner  ports.MessageRepository
	cache  ports.Cache
	router *invalidation.Router
}

func NewCachingMessageRepository(inner ports.MessageRepository, cache ports.Cache, router *invalidation.Router) ports.MessageRepository {
	return &CachingMessageRepository{inner: inner, cache: cache, router: router}
}

func (c *CachingMessageRepository) Create(ctx context.Context, m *message.Message) error {
	if err := c.inner.Create(ctx, m); err != nil {
		return err
	}
	c.router.Apply(ctx, invalidation.MessagePosted{ChatID: m.ChatID})
	return nil
}

func (c *CachingMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	return c.inner.GetByID(ctx, id)
}

func (c *CachingMessageRepository) ListByChat(ctx context.Context, chatID uuid.UUID, before string, limit int) ([]message.Message, error) {
	return loadListWithSingleflight(c.cache, ctx, cachekey.ChatMessages(chatID, before, limit), cachekey.TTLShort, func() ([]message.Message, error) {
		return c.inner.ListByChat(ctx, chatID, before, limit)
	})
}

func (c *CachingMessageRepository) MarkRead(ctx context.Context, chatID, userID uuid.UUID, messageIDs []uuid.UUID) error {
	if err := c.inner.MarkRead(ctx, chatID, userID, messageIDs); err != nil {
		return err
	}
	c.router.Apply(ctx, invalidation.ReadMarked{ChatID: chatID, UserID: userID})
	return nil
}

func (c *CachingMessageRepository) ReadSetFor(ctx context.Context, chatID, userID uuid.UUID) (message.ReadSet, error) {
	return c.inner.ReadSetFor(ctx, chatID, userID)
}

func (c *CachingMessageRepository) ToggleReaction(ctx context.Context, messageID, userID uuid.UUID, r message.Reaction) (message.ReactionState, error) {
	return c.inner.ToggleReaction(ctx, messageID, userID, r)
}

func (c *CachingMessageRepository) ReadReactions(ctx context.Context, messageID, userID uuid.UUID) (message.ReactionState, error) {
	return c.inner.ReadReactions(ctx, messageID, userID)
}
