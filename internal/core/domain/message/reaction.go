package message

// Reaction is a user's like/dislike mark on a message. A user holds at most
// one active reaction per message.
type Reaction string

const (
	ReactionNone    Reaction = "none"
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

func (r Reaction) IsValid() bool {
	switch r {
	case ReactionLike, ReactionDislike:
		return true
	default:
		return false
	}
}

// ReactionState is the reaction view of one message for one viewer: the
// shared counters plus the viewer's own active reaction.
type ReactionState struct {
	Likes        int      `json:"likes"`
	Dislikes     int      `json:"dislikes"`
	UserReaction Reaction `json:"user_reaction"`
}

// Apply computes the state after the viewer toggles requested. It is the
// pure transition used for optimistic updates; the server's answer later
// overwrites whatever this guessed.
//
//   - toggling the active reaction clears it,
//   - toggling the opposite reaction moves the count across both counters,
//   - reacting from a clean slate increments one counter.
//
// Counters never go negative, whatever sequence of toggles led here.
func Apply(current ReactionState, requested Reaction) ReactionState {
	next := current
	if next.UserReaction == "" {
		next.UserReaction = ReactionNone
	}

	switch {
	case requested == next.UserReaction:
		next = decrement(next, requested)
		next.UserReaction = ReactionNone
	case next.UserReaction != ReactionNone:
		next = decrement(next, next.UserReaction)
		next = increment(next, requested)
		next.UserReaction = requested
	default:
		next = increment(next, requested)
		next.UserReaction = requested
	}
	return next
}

func increment(s ReactionState, r Reaction) ReactionState {
	switch r {
	case ReactionLike:
		s.Likes++
	case ReactionDislike:
		s.Dislikes++
	}
	return s
}

// decrement floors at zero: a rollback or a double-toggle on cold state must
// never produce a negative counter.
func decrement(s ReactionState, r Reaction) ReactionState {
	switch r {
	case ReactionLike:
		if s.Likes > 0 {
			s.Likes--
		}
	case ReactionDislike:
		if s.Dislikes > 0 {
			s.Dislikes--
		}
	}
	return s
}
