// Package invalidation maps domain mutation events to the cache entries they
// make stale. Mutations performed by this server and row changes observed on
// the managed backend's changefeed both route through the same Router, so
// there is exactly one place that knows which keys a mutation invalidates.
package invalidation

import (
	"context"

	"github.com/driftchat/drift/internal/core/cachekey"
	"github.com/driftchat/drift/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Event is a domain mutation carrying the entity ids needed to compute the
// stale key set.
type Event interface {
	name() string
}

// ProfileUpdated invalidates the user's profile entry.
type ProfileUpdated struct {
	UserID uuid.UUID
}

// FriendshipChanged covers created, accepted, declined and removed. Both
// parties' cached views go stale, not just the acting user's; a one-sided
// invalidation leaves the counterpart reading stale state until their TTL
// expires.
type FriendshipChanged struct {
	RequesterID uuid.UUID
	ReceiverID  uuid.UUID
}

// MessagePosted invalidates every cached page of the chat's message window
// and every member's unread entry for it.
type MessagePosted struct {
	ChatID uuid.UUID
}

// MessageRemoved invalidates the chat's window and unread entries plus every
// viewer's reaction entries for the removed message. Per-user deletes cannot
// reach the reaction entries here: any viewer may hold one.
type MessageRemoved struct {
	ChatID    uuid.UUID
	MessageID uuid.UUID
}

// ReactionToggled invalidates only the affected message's reaction entries:
// the shared totals and the acting user's own-reaction state.
type ReactionToggled struct {
	MessageID uuid.UUID
	UserID    uuid.UUID
}

// ReadMarked invalidates the reader's unread entry for the chat.
type ReadMarked struct {
	ChatID uuid.UUID
	UserID uuid.UUID
}

func (ProfileUpdated) name() string    { return "profile_updated" }
func (FriendshipChanged) name() string { return "friendship_changed" }
func (MessagePosted) name() string     { return "message_posted" }
func (MessageRemoved) name() string    { return "message_removed" }
func (ReactionToggled) name() string   { return "reaction_toggled" }
func (ReadMarked) name() string        { return "read_marked" }

// Router deletes stale cache entries in response to events.
type Router struct {
	cache  ports.Cache
	logger *logrus.Logger
}

func NewRouter(cache ports.Cache, logger *logrus.Logger) *Router {
	return &Router{cache: cache, logger: logger}
}

// Apply drops every key the event makes stale. Deletion failures are logged
// and swallowed: a failed invalidation means a bounded window of staleness
// (the entry's TTL), not a broken request.
func (r *Router) Apply(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case ProfileUpdated:
		r.delete(ctx, ev, cachekey.Profile(e.UserID))

	case FriendshipChanged:
		for _, id := range []uuid.UUID{e.RequesterID, e.ReceiverID} {
			r.delete(ctx, ev,
				cachekey.Friends(id),
				cachekey.PendingRequests(id),
				cachekey.SentRequests(id),
				cachekey.ShareTargets(id),
			)
		}
		r.delete(ctx, ev, cachekey.FriendshipStatus(e.RequesterID, e.ReceiverID))

	case MessagePosted:
		r.clearPattern(ctx, ev, cachekey.ChatPattern(e.ChatID))

	case MessageRemoved:
		r.clearPattern(ctx, ev, cachekey.ChatPattern(e.ChatID))
		r.clearPattern(ctx, ev, cachekey.MessagePattern(e.MessageID))

	case ReactionToggled:
		r.delete(ctx, ev,
			cachekey.ReactionTotals(e.MessageID),
			cachekey.OwnReaction(e.MessageID, e.UserID),
		)

	case ReadMarked:
		r.delete(ctx, ev, cachekey.Unread(e.ChatID, e.UserID))

	default:
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"event": ev.name()}).Warn("invalidation: unhandled event type")
		}
	}
}

func (r *Router) delete(ctx context.Context, ev Event, keys ...string) {
	for _, key := range keys {
		if err := r.cache.Delete(ctx, key); err != nil && r.logger != nil {
			r.logger.WithFields(logrus.Fields{"event": ev.name(), "key": key}).WithError(err).Warn("invalidation: delete failed")
		}
	}
}

func (r *Router) clearPattern(ctx context.Context, ev Event, pattern string) {
	if err := r.cache.ClearPattern(ctx, pattern); err != nil && r.logger != nil {
		r.logger.WithFields(logrus.Fields{"event": ev.name(), "pattern": pattern}).WithError(err).Warn("invalidation: pattern clear failed")
	}
}
