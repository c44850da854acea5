package cachekey_test

import (
	"strings"
	"testing"

	"github.com/driftchat/drift/internal/core/cachekey"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMakeSortsParamNames(t *testing.T) {
	k1 := cachekey.Make("ns", map[string]string{"b": "2", "a": "1", "c": "3"})
	k2 := cachekey.Make("ns", map[string]string{"c": "3", "a": "1", "b": "2"})
	assert.Equal(t, k1, k2)
	assert.Equal(t, "ns|a:1|b:2|c:3", k1)
}

func TestMakeEmptyParams(t *testing.T) {
	assert.Equal(t, "ns", cachekey.Make("ns", nil))
}

func TestPairIsCommutative(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	assert.Equal(t,
		cachekey.Make("friends.status", cachekey.Pair(a, b)),
		cachekey.Make("friends.status", cachekey.Pair(b, a)),
	)
	assert.Equal(t, cachekey.FriendshipStatus(a, b), cachekey.FriendshipStatus(b, a))
}

func TestDistinctPairsGetDistinctKeys(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()
	assert.NotEqual(t, cachekey.FriendshipStatus(a, b), cachekey.FriendshipStatus(a, c))
}

func TestChatKeysShareChatPattern(t *testing.T) {
	chatID := uuid.New()
	userID := uuid.New()
	pattern := cachekey.ChatPattern(chatID)

	assert.True(t, strings.Contains(cachekey.ChatMessages(chatID, "", 50), pattern))
	assert.True(t, strings.Contains(cachekey.ChatMessages(chatID, "cursor-1", 20), pattern))
	assert.True(t, strings.Contains(cachekey.Unread(chatID, userID), pattern))
}

func TestReactionKeysShareMessagePattern(t *testing.T) {
	messageID := uuid.New()
	userID := uuid.New()
	pattern := cachekey.MessagePattern(messageID)

	assert.True(t, strings.Contains(cachekey.ReactionTotals(messageID), pattern))
	assert.True(t, strings.Contains(cachekey.OwnReaction(messageID, userID), pattern))
}

func TestPageParamsArePartOfTheKey(t *testing.T) {
	chatID := uuid.New()
	assert.NotEqual(t,
		cachekey.ChatMessages(chatID, "", 50),
		cachekey.ChatMessages(chatID, "", 20),
	)
}
