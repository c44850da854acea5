package friend

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("friendship not found")
	ErrAlreadyFriends = errors.New("users are already friends")
	ErrAlreadyPending = errors.New("a request between these users is already pending")
	ErrSelfRequest    = errors.New("cannot send a friend request to yourself")
	ErrNotPending     = errors.New("request is not pending")
	ErrNotReceiver    = errors.New("only the receiver can answer a request")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	default:
		return false
	}
}

// Friendship is one edge between two users. Requester/Receiver record who
// initiated; the relationship itself is unordered, so storage and cache keys
// use the canonical pair from CanonicalPair.
type Friendship struct {
	ID          uuid.UUID `json:"id" db:"id"`
	RequesterID uuid.UUID `json:"requester_id" db:"requester_id"`
	ReceiverID  uuid.UUID `json:"receiver_id" db:"receiver_id"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CanonicalPair orders two user ids so that (A,B) and (B,A) name the same
// relationship. The smaller uuid string comes first.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if b.String() < a.String() {
		return b, a
	}
	return a, b
}

// OtherParty returns the participant that is not userID.
func (f *Friendship) OtherParty(userID uuid.UUID) uuid.UUID {
	if f.RequesterID == userID {
		return f.ReceiverID
	}
	return f.RequesterID
}

// Involves reports whether userID is one of the two parties.
func (f *Friendship) Involves(userID uuid.UUID) bool {
	return f.RequesterID == userID || f.ReceiverID == userID
}

// SendRequestRequest is the payload for creating a friend request.
type SendRequestRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id" validate:"required"`
}

// InviteRequest is the payload for inviting someone who has no account yet.
type InviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}
