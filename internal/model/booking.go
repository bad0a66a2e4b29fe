package model

import "time"

// Booking status values.  The set is closed: a booking is created
// CONFIRMED and may transition to CANCELLED exactly once.  Records are
// never deleted and never move back to CONFIRMED.
const (
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
)

// Booking records a user's reservation of one slot in a fitness class.
// For any (user, class) pair at most one row may be CONFIRMED at a
// time; any number of CANCELLED rows may coexist, since re-booking
// after cancellation creates a fresh record.
//
// Fields:
//  ID          – primary key identifier.
//  Reference   – public UUID handle exposed in responses and events.
//  UserID      – user who holds the reservation.
//  ClassID     – class the slot belongs to.
//  Status      – CONFIRMED or CANCELLED.
//  BookedAt    – when the reservation was created.
//  CancelledAt – when it was cancelled (nil while CONFIRMED).
type Booking struct {
	ID          uint64     // bookings.id
	Reference   string     // bookings.reference
	UserID      uint64     // bookings.user_id
	ClassID     uint64     // bookings.class_id
	Status      string     // bookings.status
	BookedAt    time.Time  // bookings.booked_at
	CancelledAt *time.Time // bookings.cancelled_at (nullable)
}
