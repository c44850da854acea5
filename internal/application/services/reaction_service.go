package services

import (
	"context"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/driftchat/drift/internal/core/cachekey"
	"github.com/driftchat/drift/internal/core/domain/message"
	"github.com/driftchat/drift/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// reactionSubject identifies one optimistic unit of work: one viewer's
// reaction state on one message.
type reactionSubject struct {
	MessageID uuid.UUID
	UserID    uuid.UUID
}

// pendingLedger tracks in-flight toggles per subject. A new toggle on a
// subject supersedes the previous one: the superseded call's outcome is
// discarded so a stale response can never overwrite a newer prediction.
type pendingLedger struct {
	mu      sync.Mutex
	nextSeq uint64
	pending map[reactionSubject]uint64
}

func newPendingLedger() *pendingLedger {
	return &pendingLedger{pending: make(map[reactionSubject]uint64)}
}

// begin registers a toggle for the subject, replacing any in-flight one,
// and returns its sequence number.
func (l *pendingLedger) begin(sub reactionSubject) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextSeq++
	l.pending[sub] = l.nextSeq
	return l.nextSeq
}

// resolve reports whether seq is still the subject's latest toggle, and if
// so clears the pending entry. A superseded toggle gets false: its outcome
// must not touch the cache.
func (l *pendingLedger) resolve(sub reactionSubject, seq uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending[sub] != seq {
		return false
	}
	delete(l.pending, sub)
	return true
}

// ReactionService is the optimistic reaction engine. Toggle writes the
// locally-predicted state into the cache before the authoritative call goes
// out, so the UI state a client reads back is never behind its own action.
// The server's answer then either confirms (server truth replaces the
// prediction) or fails (the pre-toggle state is restored).
type ReactionService struct {
	authority ports.ReactionAuthority
	cache     ports.Cache
	ledger    *pendingLedger
	logger    *logrus.Logger
}

func NewReactionService(authority ports.ReactionAuthority, cache ports.Cache, logger *logrus.Logger) ports.ReactionService {
	return &ReactionService{
		authority: authority,
		cache:     cache,
		ledger:    newPendingLedger(),
		logger:    logger,
	}
}

func (s *ReactionService) Get(ctx context.Context, messageID, viewerID uuid.UUID) (message.ReactionState, error) {
	key := cachekey.OwnReaction(messageID, viewerID)
	if b, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var state message.ReactionState
		if err := json.Unmarshal(b, &state); err == nil {
			return state, nil
		}
	}

	state, err := s.authority.ReadReactions(ctx, messageID, viewerID)
	if err != nil {
		return message.ReactionState{UserReaction: message.ReactionNone}, fmt.Errorf("failed to read reactions: %w", err)
	}
	s.writeBack(ctx, messageID, viewerID, state)
	return state, nil
}

// Totals returns the message's counters without a viewer's own reaction.
// All viewers share the one cache entry, so a hot message costs one
// authoritative read per TTL regardless of audience size.
func (s *ReactionService) Totals(ctx context.Context, messageID uuid.UUID) (message.ReactionState, error) {
	key := cachekey.ReactionTotals(messageID)
	if b, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var state message.ReactionState
		if err := json.Unmarshal(b, &state); err == nil {
			return state, nil
		}
	}

	state, err := s.authority.ReadReactions(ctx, messageID, uuid.Nil)
	if err != nil {
		return message.ReactionState{UserReaction: message.ReactionNone}, fmt.Errorf("failed to read reactions: %w", err)
	}
	state.UserReaction = message.ReactionNone
	s.cacheSet(ctx, key, state)
	return state, nil
}

// Toggle runs the optimistic protocol for one reaction toggle.
func (s *ReactionService) Toggle(ctx context.Context, messageID, viewerID uuid.UUID, r message.Reaction) (message.ReactionState, error) {
	if !r.IsValid() {
		return message.ReactionState{}, fmt.Errorf("invalid reaction %q", r)
	}

	prior, err := s.Get(ctx, messageID, viewerID)
	if err != nil {
		return message.ReactionState{}, err
	}

	sub := reactionSubject{MessageID: messageID, UserID: viewerID}
	seq := s.ledger.begin(sub)

	// Predicted state is visible immediately, before the round trip.
	predicted := message.Apply(prior, r)
	s.writeBack(ctx, messageID, viewerID, predicted)

	state, err := s.authority.ToggleReaction(ctx, messageID, viewerID, r)
	if err != nil {
		if s.ledger.resolve(sub, seq) {
			s.writeBack(ctx, messageID, viewerID, prior)
		}
		s.logger.WithFields(logrus.Fields{
			"message_id": messageID,
			"user_id":    viewerID,
			"reaction":   r,
		}).WithError(err).Warn("reaction toggle failed, rolled back")
		return prior, fmt.Errorf("failed to toggle reaction: %w", err)
	}

	// Server truth wins over the prediction, but only if this toggle was
	// not superseded while in flight.
	if s.ledger.resolve(sub, seq) {
		s.writeBack(ctx, messageID, viewerID, state)
	}
	return state, nil
}

// writeBack stores the per-viewer state and the shared totals. Cache write
// failures degrade to a read-through on the next Get.
func (s *ReactionService) writeBack(ctx context.Context, messageID, viewerID uuid.UUID, state message.ReactionState) {
	s.cacheSet(ctx, cachekey.OwnReaction(messageID, viewerID), state)

	totals := message.ReactionState{Likes: state.Likes, Dislikes: state.Dislikes, UserReaction: message.ReactionNone}
	s.cacheSet(ctx, cachekey.ReactionTotals(messageID), totals)
}

func (s *ReactionService) cacheSet(ctx context.Context, key string, state message.ReactionState) {
	b, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, b, cachekey.TTLShort); err != nil {
		s.logger.WithFields(logrus.Fields{"key": key}).WithError(err).Warn("failed to cache reaction state")
	}
}
