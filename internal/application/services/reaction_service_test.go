package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	impl "github.com/driftchat/drift/internal/application/services"
	"github.com/driftchat/drift/internal/core/cachekey"
	"github.com/driftchat/drift/internal/core/domain/message"
	"github.com/driftchat/drift/internal/core/ports"
)

func cachedState(t *testing.T, cache *mapCache, messageID, userID uuid.UUID) message.ReactionState {
	t.Helper()
	b, ok, err := cache.Get(context.Background(), cachekey.OwnReaction(messageID, userID))
	require.NoError(t, err)
	require.True(t, ok, "expected a cached reaction state")
	var state message.ReactionState
	require.NoError(t, json.Unmarshal(b, &state))
	return state
}

func TestToggle_SuccessUsesServerTruth(t *testing.T) {
	messageID, viewerID := uuid.New(), uuid.New()
	cache := newMapCache()

	authority := &reactionAuthorityMock{
		readFn: func(ctx context.Context, m, u uuid.UUID) (message.ReactionState, error) {
			return message.ReactionState{Likes: 2, UserReaction: message.ReactionNone}, nil
		},
		toggleFn: func(ctx context.Context, m, u uuid.UUID, r message.Reaction) (message.ReactionState, error) {
			// Another user reacted concurrently: server truth disagrees
			// with the local guess.
			return message.ReactionState{Likes: 4, UserReaction: message.ReactionLike}, nil
		},
	}
	svc := impl.NewReactionService(authority, cache, logrus.New())

	state, err := svc.Toggle(context.Background(), messageID, viewerID, message.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, 4, state.Likes)
	assert.Equal(t, message.ReactionLike, state.UserReaction)

	// Cache holds server truth, not the prediction (which was Likes=3).
	assert.Equal(t, state, cachedState(t, cache, messageID, viewerID))
}

func TestToggle_FailureRollsBack(t *testing.T) {
	messageID, viewerID := uuid.New(), uuid.New()
	cache := newMapCache()

	prior := message.ReactionState{Likes: 1, Dislikes: 2, UserReaction: message.ReactionNone}
	authority := &reactionAuthorityMock{
		readFn: func(ctx context.Context, m, u uuid.UUID) (message.ReactionState, error) {
			return prior, nil
		},
		toggleFn: func(ctx context.Context, m, u uuid.UUID, r message.Reaction) (message.ReactionState, error) {
			return message.ReactionState{}, errors.New("backend unavailable")
		},
	}
	svc := impl.NewReactionService(authority, cache, logrus.New())

	state, err := svc.Toggle(context.Background(), messageID, viewerID, message.ReactionLike)
	require.Error(t, err)

	// The returned state and the cache are both back at pre-toggle.
	assert.Equal(t, prior, state)
	assert.Equal(t, prior, cachedState(t, cache, messageID, viewerID))
}

func TestToggle_OptimisticStateVisibleBeforeConfirm(t *testing.T) {
	messageID, viewerID := uuid.New(), uuid.New()
	cache := newMapCache()

	var observed message.ReactionState
	authority := &reactionAuthorityMock{
		readFn: func(ctx context.Context, m, u uuid.UUID) (message.ReactionState, error) {
			return message.ReactionState{UserReaction: message.ReactionNone}, nil
		},
	}
	authority.toggleFn = func(ctx context.Context, m, u uuid.UUID, r message.Reaction) (message.ReactionState, error) {
		// While the authoritative call is in flight, the prediction is
		// already what readers see.
		observed = cachedState(t, cache, messageID, viewerID)
		return message.ReactionState{Likes: 1, UserReaction: message.ReactionLike}, nil
	}
	svc := impl.NewReactionService(authority, cache, logrus.New())

	_, err := svc.Toggle(context.Background(), messageID, viewerID, message.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, message.ReactionState{Likes: 1, UserReaction: message.ReactionLike}, observed)
}

func TestToggle_SupersededOutcomeDiscarded(t *testing.T) {
	messageID, viewerID := uuid.New(), uuid.New()
	cache := newMapCache()

	calls := 0
	authority := &reactionAuthorityMock{
		readFn: func(ctx context.Context, m, u uuid.UUID) (message.ReactionState, error) {
			return message.ReactionState{UserReaction: message.ReactionNone}, nil
		},
	}
	var svcRef ports.ReactionService
	authority.toggleFn = func(ctx context.Context, m, u uuid.UUID, r message.Reaction) (message.ReactionState, error) {
		calls++
		if calls == 1 {
			// A second toggle lands while the first is still in flight; the
			// first call's stale answer must not win.
			_, err := svcRef.Toggle(ctx, messageID, viewerID, message.ReactionDislike)
			require.NoError(t, err)
			return message.ReactionState{Likes: 1, UserReaction: message.ReactionLike}, nil
		}
		return message.ReactionState{Dislikes: 1, UserReaction: message.ReactionDislike}, nil
	}
	svc := impl.NewReactionService(authority, cache, logrus.New())
	svcRef = svc

	_, err := svc.Toggle(context.Background(), messageID, viewerID, message.ReactionLike)
	require.NoError(t, err)

	// The later toggle's server truth stays in the cache.
	assert.Equal(t, message.ReactionState{Dislikes: 1, UserReaction: message.ReactionDislike},
		cachedState(t, cache, messageID, viewerID))
}

func TestGet_ReadsThroughAndCaches(t *testing.T) {
	messageID, viewerID := uuid.New(), uuid.New()
	cache := newMapCache()

	reads := 0
	authority := &reactionAuthorityMock{
		readFn: func(ctx context.Context, m, u uuid.UUID) (message.ReactionState, error) {
			reads++
			return message.ReactionState{Likes: 7, UserReaction: message.ReactionLike}, nil
		},
	}
	svc := impl.NewReactionService(authority, cache, logrus.New())

	first, err := svc.Get(context.Background(), messageID, viewerID)
	require.NoError(t, err)
	second, err := svc.Get(context.Background(), messageID, viewerID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, reads, "second Get should be served from cache")
}

func TestTotals_SharedAcrossViewersAndCached(t *testing.T) {
	messageID := uuid.New()
	cache := newMapCache()

	reads := 0
	authority := &reactionAuthorityMock{
		readFn: func(ctx context.Context, m, u uuid.UUID) (message.ReactionState, error) {
			reads++
			assert.Equal(t, uuid.Nil, u, "totals carry no viewer")
			return message.ReactionState{Likes: 9, Dislikes: 3, UserReaction: message.ReactionNone}, nil
		},
	}
	svc := impl.NewReactionService(authority, cache, logrus.New())

	first, err := svc.Totals(context.Background(), messageID)
	require.NoError(t, err)
	second, err := svc.Totals(context.Background(), messageID)
	require.NoError(t, err)

	assert.Equal(t, message.ReactionState{Likes: 9, Dislikes: 3, UserReaction: message.ReactionNone}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, reads, "second Totals should be served from cache")
}

func TestTotals_PopulatedByToggle(t *testing.T) {
	messageID, viewerID := uuid.New(), uuid.New()
	cache := newMapCache()

	authority := &reactionAuthorityMock{
		readFn: func(ctx context.Context, m, u uuid.UUID) (message.ReactionState, error) {
			if u == uuid.Nil {
				t.Fatal("totals after a toggle should come from the toggle's write-back")
			}
			return message.ReactionState{UserReaction: message.ReactionNone}, nil
		},
		toggleFn: func(ctx context.Context, m, u uuid.UUID, r message.Reaction) (message.ReactionState, error) {
			return message.ReactionState{Likes: 1, UserReaction: message.ReactionLike}, nil
		},
	}
	svc := impl.NewReactionService(authority, cache, logrus.New())

	_, err := svc.Toggle(context.Background(), messageID, viewerID, message.ReactionLike)
	require.NoError(t, err)

	totals, err := svc.Totals(context.Background(), messageID)
	require.NoError(t, err)
	// The shared entry never carries a viewer's own reaction.
	assert.Equal(t, message.ReactionState{Likes: 1, UserReaction: message.ReactionNone}, totals)
}

// failingSetCache rejects every write; reads still see whatever was stored
// before it started failing.
type failingSetCache struct {
	*mapCache
}

func (c *failingSetCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("cache backend down")
}

func TestToggle_CacheWriteFailureDoesNotFailToggle(t *testing.T) {
	messageID, viewerID := uuid.New(), uuid.New()
	cache := &failingSetCache{mapCache: newMapCache()}

	authority := &reactionAuthorityMock{
		readFn: func(ctx context.Context, m, u uuid.UUID) (message.ReactionState, error) {
			return message.ReactionState{UserReaction: message.ReactionNone}, nil
		},
		toggleFn: func(ctx context.Context, m, u uuid.UUID, r message.Reaction) (message.ReactionState, error) {
			return message.ReactionState{Likes: 1, UserReaction: message.ReactionLike}, nil
		},
	}
	svc := impl.NewReactionService(authority, cache, logrus.New())

	state, err := svc.Toggle(context.Background(), messageID, viewerID, message.ReactionLike)
	require.NoError(t, err, "cache writes are best-effort on every path")
	assert.Equal(t, message.ReactionState{Likes: 1, UserReaction: message.ReactionLike}, state)
}

func TestToggle_RejectsInvalidReaction(t *testing.T) {
	svc := impl.NewReactionService(&reactionAuthorityMock{}, newMapCache(), logrus.New())
	_, err := svc.Toggle(context.Background(), uuid.New(), uuid.New(), message.Reaction("love"))
	require.Error(t, err)
}
