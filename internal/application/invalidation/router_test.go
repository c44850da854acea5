package invalidation_test

import (
	"context"
	"testing"
	"time"

	"github.com/driftchat/drift/internal/application/invalidation"
	"github.com/driftchat/drift/internal/core/cachekey"
	"github.com/driftchat/drift/internal/infrastructure/memcache"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func seed(t *testing.T, c *memcache.Cache, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, c.Set(context.Background(), k, []byte("x"), time.Minute))
	}
}

func present(c *memcache.Cache, key string) bool {
	_, ok, _ := c.Get(context.Background(), key)
	return ok
}

// A friendship event must clear cached friend views for BOTH parties.
func TestFriendshipChangedClearsBothParties(t *testing.T) {
	cache := memcache.New(0, quietLogger())
	router := invalidation.NewRouter(cache, quietLogger())

	requester := uuid.New()
	receiver := uuid.New()
	bystander := uuid.New()

	seed(t, cache,
		cachekey.Friends(requester),
		cachekey.Friends(receiver),
		cachekey.Friends(bystander),
		cachekey.PendingRequests(receiver),
		cachekey.SentRequests(requester),
		cachekey.ShareTargets(requester),
		cachekey.ShareTargets(receiver),
		cachekey.FriendshipStatus(requester, receiver),
	)

	router.Apply(context.Background(), invalidation.FriendshipChanged{
		RequesterID: requester,
		ReceiverID:  receiver,
	})

	assert.False(t, present(cache, cachekey.Friends(requester)))
	assert.False(t, present(cache, cachekey.Friends(receiver)))
	assert.False(t, present(cache, cachekey.PendingRequests(receiver)))
	assert.False(t, present(cache, cachekey.SentRequests(requester)))
	assert.False(t, present(cache, cachekey.ShareTargets(requester)))
	assert.False(t, present(cache, cachekey.ShareTargets(receiver)))
	assert.False(t, present(cache, cachekey.FriendshipStatus(receiver, requester)))

	assert.True(t, present(cache, cachekey.Friends(bystander)), "unrelated users keep their entries")
}

func TestProfileUpdatedClearsOnlyThatProfile(t *testing.T) {
	cache := memcache.New(0, quietLogger())
	router := invalidation.NewRouter(cache, quietLogger())

	target := uuid.New()
	other := uuid.New()
	seed(t, cache, cachekey.Profile(target), cachekey.Profile(other), cachekey.Friends(target))

	router.Apply(context.Background(), invalidation.ProfileUpdated{UserID: target})

	assert.False(t, present(cache, cachekey.Profile(target)))
	assert.True(t, present(cache, cachekey.Profile(other)))
	assert.True(t, present(cache, cachekey.Friends(target)), "profile updates do not touch friend lists")
}

func TestMessagePostedClearsAllWindowPagesAndUnread(t *testing.T) {
	cache := memcache.New(0, quietLogger())
	router := invalidation.NewRouter(cache, quietLogger())

	chatID := uuid.New()
	otherChat := uuid.New()
	member := uuid.New()

	seed(t, cache,
		cachekey.ChatMessages(chatID, "", 50),
		cachekey.ChatMessages(chatID, "cursor", 20),
		cachekey.Unread(chatID, member),
		cachekey.ChatMessages(otherChat, "", 50),
	)

	router.Apply(context.Background(), invalidation.MessagePosted{ChatID: chatID})

	assert.False(t, present(cache, cachekey.ChatMessages(chatID, "", 50)))
	assert.False(t, present(cache, cachekey.ChatMessages(chatID, "cursor", 20)))
	assert.False(t, present(cache, cachekey.Unread(chatID, member)))
	assert.True(t, present(cache, cachekey.ChatMessages(otherChat, "", 50)))
}

// Removing a message reaches every viewer's reaction entries for it, which
// per-user deletes cannot enumerate.
func TestMessageRemovedClearsWindowAndAllReactionEntries(t *testing.T) {
	cache := memcache.New(0, quietLogger())
	router := invalidation.NewRouter(cache, quietLogger())

	chatID := uuid.New()
	messageID := uuid.New()
	otherMessage := uuid.New()
	viewerA := uuid.New()
	viewerB := uuid.New()

	seed(t, cache,
		cachekey.ChatMessages(chatID, "", 50),
		cachekey.ReactionTotals(messageID),
		cachekey.OwnReaction(messageID, viewerA),
		cachekey.OwnReaction(messageID, viewerB),
		cachekey.ReactionTotals(otherMessage),
	)

	router.Apply(context.Background(), invalidation.MessageRemoved{ChatID: chatID, MessageID: messageID})

	assert.False(t, present(cache, cachekey.ChatMessages(chatID, "", 50)))
	assert.False(t, present(cache, cachekey.ReactionTotals(messageID)))
	assert.False(t, present(cache, cachekey.OwnReaction(messageID, viewerA)))
	assert.False(t, present(cache, cachekey.OwnReaction(messageID, viewerB)))
	assert.True(t, present(cache, cachekey.ReactionTotals(otherMessage)))
}

func TestReactionToggledClearsOnlyAffectedMessage(t *testing.T) {
	cache := memcache.New(0, quietLogger())
	router := invalidation.NewRouter(cache, quietLogger())

	messageID := uuid.New()
	otherMessage := uuid.New()
	userID := uuid.New()
	otherUser := uuid.New()

	seed(t, cache,
		cachekey.ReactionTotals(messageID),
		cachekey.OwnReaction(messageID, userID),
		cachekey.OwnReaction(messageID, otherUser),
		cachekey.ReactionTotals(otherMessage),
	)

	router.Apply(context.Background(), invalidation.ReactionToggled{MessageID: messageID, UserID: userID})

	assert.False(t, present(cache, cachekey.ReactionTotals(messageID)))
	assert.False(t, present(cache, cachekey.OwnReaction(messageID, userID)))
	assert.True(t, present(cache, cachekey.OwnReaction(messageID, otherUser)), "other viewers' own-reaction state is untouched")
	assert.True(t, present(cache, cachekey.ReactionTotals(otherMessage)))
}

func TestReadMarkedClearsReadersUnreadOnly(t *testing.T) {
	cache := memcache.New(0, quietLogger())
	router := invalidation.NewRouter(cache, quietLogger())

	chatID := uuid.New()
	reader := uuid.New()
	other := uuid.New()

	seed(t, cache, cachekey.Unread(chatID, reader), cachekey.Unread(chatID, other))

	router.Apply(context.Background(), invalidation.ReadMarked{ChatID: chatID, UserID: reader})

	assert.False(t, present(cache, cachekey.Unread(chatID, reader)))
	assert.True(t, present(cache, cachekey.Unread(chatID, other)))
}
