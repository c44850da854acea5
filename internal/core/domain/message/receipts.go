package message

import "github.com/google/uuid"

// DeliveryStatus is the badge shown on the viewer's own outgoing messages.
// Incoming messages carry no badge.
type DeliveryStatus string

const (
	// StatusSent: authored by the viewer, not yet persisted server-side.
	StatusSent DeliveryStatus = "sent"
	// StatusDelivered: persisted, counterpart has not read it yet.
	StatusDelivered DeliveryStatus = "delivered"
	// StatusRead: counterpart has read it.
	StatusRead DeliveryStatus = "read"
	// StatusNone: not the viewer's message, no badge.
	StatusNone DeliveryStatus = ""
)

// ReadSet is the set of message ids a particular user has read.
type ReadSet map[uuid.UUID]struct{}

func NewReadSet(ids []uuid.UUID) ReadSet {
	s := make(ReadSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s ReadSet) Contains(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// StatusFor classifies one message for the viewer. counterpartRead is the
// set of message ids the other party has read. Pure and idempotent: the same
// inputs always classify the same way.
func StatusFor(m Message, viewerID uuid.UUID, counterpartRead ReadSet) DeliveryStatus {
	if m.SenderID != viewerID {
		return StatusNone
	}
	if m.ID == uuid.Nil {
		return StatusSent
	}
	if counterpartRead.Contains(m.ID) {
		return StatusRead
	}
	return StatusDelivered
}

// Receipt pairs a message id with its delivery status for the viewer.
type Receipt struct {
	MessageID uuid.UUID      `json:"message_id"`
	Status    DeliveryStatus `json:"status"`
}

// AggregateReceipts computes the status of every outgoing message in one
// pass. Order of the input does not affect the result.
func AggregateReceipts(msgs []Message, viewerID uuid.UUID, counterpartRead ReadSet) []Receipt {
	receipts := make([]Receipt, 0, len(msgs))
	for _, m := range msgs {
		status := StatusFor(m, viewerID, counterpartRead)
		if status == StatusNone {
			continue
		}
		receipts = append(receipts, Receipt{MessageID: m.ID, Status: status})
	}
	return receipts
}

// UnreadCount is the number of messages the viewer has not read and did not
// author. viewerRead is the viewer's own read set.
func UnreadCount(msgs []Message, viewerID uuid.UUID, viewerRead ReadSet) int {
	n := 0
	for _, m := range msgs {
		if m.SenderID == viewerID {
			continue
		}
		if !viewerRead.Contains(m.ID) {
			n++
		}
	}
	return n
}
