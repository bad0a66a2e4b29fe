package model

import "time"

// ClassType enumerates the kinds of fitness classes the platform
// schedules.  The set is closed; values outside it are rejected at
// creation time.
const (
	ClassTypeYoga  = "YOGA"
	ClassTypeZumba = "ZUMBA"
	ClassTypeHIIT  = "HIIT"
)

// ValidClassType reports whether t is one of the supported class types.
func ValidClassType(t string) bool {
	switch t {
	case ClassTypeYoga, ClassTypeZumba, ClassTypeHIIT:
		return true
	}
	return false
}

// FitnessClass represents a scheduled class session as stored in the
// `classes` table.  TotalSlots is the immutable capacity ceiling;
// AvailableSlots is the live counter and is mutated only by the
// booking repository, never by catalog updates.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – display name of the session.
//  ClassType       – one of YOGA, ZUMBA, HIIT.
//  Instructor      – name of the instructor running the session.
//  DurationMinutes – length of the session in minutes (positive).
//  DateTime        – when the session starts (stored in UTC).
//  TotalSlots      – capacity ceiling, fixed at creation.
//  AvailableSlots  – remaining bookable slots, 0..TotalSlots.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type FitnessClass struct {
	ID              uint64    // classes.id
	Name            string    // classes.name
	ClassType       string    // classes.class_type
	Instructor      string    // classes.instructor
	DurationMinutes uint32    // classes.duration_minutes
	DateTime        time.Time // classes.date_time
	TotalSlots      uint32    // classes.total_slots
	AvailableSlots  uint32    // classes.available_slots
	CreatedAt       time.Time // classes.created_at
	UpdatedAt       time.Time // classes.updated_at
}

// IsUpcoming reports whether the class starts after the given instant.
func (c *FitnessClass) IsUpcoming(now time.Time) bool {
	return c.DateTime.After(now)
}

// IsBookable reports whether the class can still accept reservations:
// it must be upcoming and have at least one free slot.
func (c *FitnessClass) IsBookable(now time.Time) bool {
	return c.IsUpcoming(now) && c.AvailableSlots > 0
}
