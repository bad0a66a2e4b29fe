// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

// Queue names used by the booking event flow.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingEvent is published after a reserve or cancel transaction
// commits. It carries enough information for downstream consumers to
// log or notify without querying the primary database. The Reference
// is the booking's public UUID; AvailableSlots is the counter value
// right after the commit.
type BookingEvent struct {
	BookingID      uint64 `json:"booking_id"`
	Reference      string `json:"reference"`
	UserID         uint64 `json:"user_id"`
	ClassID        uint64 `json:"class_id"`
	ClassName      string `json:"class_name"`
	ClassType      string `json:"class_type"`
	Instructor     string `json:"instructor"`
	StartsAt       string `json:"starts_at"`
	Status         string `json:"status"`
	AvailableSlots uint32 `json:"available_slots"`
	OccurredAt     string `json:"occurred_at"`
}
