// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting error text. The booking ledger in particular reports a
// closed taxonomy of failures so that API consumers can branch on
// them programmatically.
package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrClassNotFound is returned when a referenced fitness class does
// not exist. Handlers should translate this into an HTTP 404 response.
var ErrClassNotFound = errors.New("class not found")

// ErrBookingNotFound is returned when a referenced booking does not
// exist. Handlers should translate this into an HTTP 404 response.
var ErrBookingNotFound = errors.New("booking not found")

// ErrNotBookable is returned when a reservation is attempted against a
// class whose start time has already passed.
var ErrNotBookable = errors.New("class is not open for booking")

// ErrNoAvailableSlots is returned when a reservation is attempted
// against a class whose capacity is exhausted.
var ErrNoAvailableSlots = errors.New("no available slots")

// ErrDuplicateBooking is returned when the user already holds a
// CONFIRMED booking for the class.
var ErrDuplicateBooking = errors.New("class already booked")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrAlreadyCancelled is returned when cancel is invoked on a booking
// that is already CANCELLED. Re-cancelling is a hard error rather than
// a no-op so that a retried cancel is distinguishable from a real
// state change in the audit trail.
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// ErrConflict is returned when the database could not serialize a
// transaction (deadlock or lock wait timeout). The operation was not
// applied and the caller may retry. No retries happen inside the
// repository itself.
var ErrConflict = errors.New("conflict, retry the operation")

// ErrEmailExists is returned when registering a user with an email
// address that is already taken.
var ErrEmailExists = errors.New("email already exists")

// ValidationError reports one or more violated field constraints on
// input data, keyed by field name. It is returned by catalog create
// and update operations.
type ValidationError struct {
	Fields map[string]string
}

// Error renders the violations in a stable, sorted order.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
