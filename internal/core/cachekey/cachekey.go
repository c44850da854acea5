// Package cachekey builds deterministic cache keys for the social/chat
// caches. Keys are assembled from a namespace and a parameter set; the same
// logical resource always canonicalizes to the same key, regardless of the
// order parameters were supplied in.
package cachekey

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TTL classes for cached social data. The cache itself is TTL-agnostic;
// these are policy constants owned by callers.
const (
	TTLShort   = 30 * time.Second // frequently-changing data: lists, reactions, unread
	TTLDefault = 5 * time.Minute  // profile-like data
	TTLLong    = 15 * time.Minute // rarely-changing data
)

const pairSep = "|"

// Make renders a namespace plus named parameters into an opaque key.
// Field names are sorted lexicographically so two equivalent parameter sets
// always produce the same string.
func Make(namespace string, params map[string]string) string {
	if len(params) == 0 {
		return namespace
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(namespace)
	for _, name := range names {
		b.WriteString(pairSep)
		b.WriteString(name)
		b.WriteString(":")
		b.WriteString(params[name])
	}
	return b.String()
}

// Pair returns the canonical parameter set for an unordered relationship
// between two identifiers. The smaller id always lands in "a", so
// Make(ns, Pair(x, y)) == Make(ns, Pair(y, x)).
func Pair(a, b uuid.UUID) map[string]string {
	x, y := a.String(), b.String()
	if y < x {
		x, y = y, x
	}
	return map[string]string{"a": x, "b": y}
}

// Named key builders. Every cached resource in the application gets its key
// from one of these, so the invalidation rules and the read paths can never
// drift apart on formatting.

func Profile(userID uuid.UUID) string {
	return Make("profile", map[string]string{"user": userID.String()})
}

func Friends(userID uuid.UUID) string {
	return Make("friends", map[string]string{"user": userID.String()})
}

func PendingRequests(userID uuid.UUID) string {
	return Make("friends.pending", map[string]string{"user": userID.String()})
}

func SentRequests(userID uuid.UUID) string {
	return Make("friends.sent", map[string]string{"user": userID.String()})
}

// FriendshipStatus is keyed on the unordered user pair: the relationship
// between A and B is one resource, not two.
func FriendshipStatus(a, b uuid.UUID) string {
	return Make("friends.status", Pair(a, b))
}

func ShareTargets(userID uuid.UUID) string {
	return Make("share", map[string]string{"user": userID.String()})
}

// ChatMessages keys one page of a chat's message window. The page parameters
// are part of the key; ChatPattern catches every page on invalidation.
func ChatMessages(chatID uuid.UUID, before string, limit int) string {
	params := map[string]string{"chat": chatID.String(), "limit": strconv.Itoa(limit)}
	if before != "" {
		params["before"] = before
	}
	return Make("msgs", params)
}

func Unread(chatID, userID uuid.UUID) string {
	return Make("msgs.unread", map[string]string{"chat": chatID.String(), "user": userID.String()})
}

// ReactionTotals is the viewer-independent counter key for one message.
func ReactionTotals(messageID uuid.UUID) string {
	return Make("reactions", map[string]string{"msg": messageID.String()})
}

// OwnReaction holds the full per-viewer reaction state for one message.
func OwnReaction(messageID, userID uuid.UUID) string {
	return Make("reactions.own", map[string]string{"msg": messageID.String(), "user": userID.String()})
}

// ChatPattern matches every key that mentions the chat: message windows and
// per-member unread entries.
func ChatPattern(chatID uuid.UUID) string {
	return "chat:" + chatID.String()
}

// MessagePattern matches every reaction key for the message.
func MessagePattern(messageID uuid.UUID) string {
	return "msg:" + messageID.String()
}
