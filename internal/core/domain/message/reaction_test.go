package message_test

import (
	"math/rand"
	"testing"

	"github.com/driftchat/drift/internal/core/domain/message"
	"github.com/stretchr/testify/assert"
)

func TestApplyFromCleanSlate(t *testing.T) {
	s := message.ReactionState{UserReaction: message.ReactionNone}

	next := message.Apply(s, message.ReactionLike)
	assert.Equal(t, message.ReactionState{Likes: 1, Dislikes: 0, UserReaction: message.ReactionLike}, next)

	next = message.Apply(s, message.ReactionDislike)
	assert.Equal(t, message.ReactionState{Likes: 0, Dislikes: 1, UserReaction: message.ReactionDislike}, next)
}

func TestApplySameReactionTogglesOff(t *testing.T) {
	s := message.ReactionState{Likes: 3, Dislikes: 1, UserReaction: message.ReactionLike}
	next := message.Apply(s, message.ReactionLike)
	assert.Equal(t, message.ReactionState{Likes: 2, Dislikes: 1, UserReaction: message.ReactionNone}, next)
}

func TestApplyOppositeMovesCountAcrossCounters(t *testing.T) {
	s := message.ReactionState{Likes: 3, Dislikes: 1, UserReaction: message.ReactionLike}
	next := message.Apply(s, message.ReactionDislike)
	assert.Equal(t, message.ReactionState{Likes: 2, Dislikes: 2, UserReaction: message.ReactionDislike}, next)
}

// Toggling the same reaction twice returns to the pre-toggle state, provided
// the start holds no opposite reaction: on/off and off/on are inverses.
func TestApplyRoundTrip(t *testing.T) {
	cases := []message.ReactionState{
		{UserReaction: message.ReactionNone},
		{Likes: 5, Dislikes: 2, UserReaction: message.ReactionNone},
		{Likes: 5, Dislikes: 2, UserReaction: message.ReactionLike},
	}
	for _, s := range cases {
		once := message.Apply(s, message.ReactionLike)
		twice := message.Apply(once, message.ReactionLike)
		assert.Equal(t, normalize(s), twice, "start=%+v", s)
	}
}

// From an opposite reaction there is no round trip: the first toggle moves
// the count across, the second clears it. The moved count does not come back.
func TestApplyTwiceFromOppositeClearsReaction(t *testing.T) {
	s := message.ReactionState{Likes: 5, Dislikes: 2, UserReaction: message.ReactionDislike}

	once := message.Apply(s, message.ReactionLike)
	assert.Equal(t, message.ReactionState{Likes: 6, Dislikes: 1, UserReaction: message.ReactionLike}, once)

	twice := message.Apply(once, message.ReactionLike)
	assert.Equal(t, message.ReactionState{Likes: 5, Dislikes: 1, UserReaction: message.ReactionNone}, twice)
}

// like, dislike, dislike ends in the same place as dislike alone.
func TestApplyPathIndependence(t *testing.T) {
	start := message.ReactionState{Likes: 2, Dislikes: 2, UserReaction: message.ReactionNone}

	long := message.Apply(start, message.ReactionLike)
	long = message.Apply(long, message.ReactionDislike)
	long = message.Apply(long, message.ReactionDislike)

	short := message.Apply(start, message.ReactionDislike)
	short = message.Apply(short, message.ReactionDislike)

	assert.Equal(t, short, long)
	assert.Equal(t, start, long)
}

// No finite toggle sequence from zero ever drives a counter negative.
func TestApplyCountersNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	reactions := []message.Reaction{message.ReactionLike, message.ReactionDislike}

	for run := 0; run < 100; run++ {
		s := message.ReactionState{UserReaction: message.ReactionNone}
		for i := 0; i < 50; i++ {
			s = message.Apply(s, reactions[rng.Intn(len(reactions))])
			assert.GreaterOrEqual(t, s.Likes, 0)
			assert.GreaterOrEqual(t, s.Dislikes, 0)
		}
	}
}

// Apply tolerates state whose counters are already at zero while a reaction
// is recorded (possible after a reconcile against server truth).
func TestApplyFloorsInconsistentState(t *testing.T) {
	s := message.ReactionState{Likes: 0, Dislikes: 0, UserReaction: message.ReactionLike}
	next := message.Apply(s, message.ReactionDislike)
	assert.Equal(t, message.ReactionState{Likes: 0, Dislikes: 1, UserReaction: message.ReactionDislike}, next)
}

// normalize maps the empty reaction to the explicit none, mirroring Apply's
// own defaulting.
func normalize(s message.ReactionState) message.ReactionState {
	if s.UserReaction == "" {
		s.UserReaction = message.ReactionNone
	}
	return s
}
