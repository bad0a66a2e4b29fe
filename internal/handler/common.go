// Package handler implements the HTTP endpoints of the booking
// platform. Handlers depend on small store interfaces rather than the
// concrete repositories so tests can substitute stubs; the repository
// types satisfy them directly.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-class-booking/internal/middleware"
	"github.com/iliyamo/fitness-class-booking/internal/model"
	"github.com/iliyamo/fitness-class-booking/internal/repository"
)

// dateTimeLayout is the wire format for class start times, in the
// request's display timezone: dd/mm/yyyy HH:MM.
const dateTimeLayout = "02/01/2006 15:04"

// ClassCatalog is the store surface the class handlers need.
type ClassCatalog interface {
	Create(ctx context.Context, spec repository.ClassSpec) (*model.FitnessClass, error)
	Update(ctx context.Context, id uint64, spec repository.ClassSpec) (*model.FitnessClass, error)
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (*model.FitnessClass, error)
	List(ctx context.Context, filter repository.ClassFilter) ([]model.FitnessClass, error)
}

// BookingLedger is the store surface the booking handlers need. Its
// implementation owns the capacity and uniqueness invariants.
type BookingLedger interface {
	Reserve(ctx context.Context, userID, classID uint64) (*model.Booking, *model.FitnessClass, error)
	Cancel(ctx context.Context, bookingID, actorID uint64, actorIsAdmin bool) (*model.Booking, *model.FitnessClass, error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.BookingDetail, error)
	ListAll(ctx context.Context, filter repository.BookingListFilter) ([]repository.BookingDetail, error)
}

// StatsReader is the read-only rollup surface for the stats handlers.
type StatsReader interface {
	Admin(ctx context.Context) (*repository.AdminStats, error)
	ForUser(ctx context.Context, userID uint64) (*repository.UserStats, error)
}

// actor returns the authenticated (userID, isAdmin) pair stored in the
// context by the JWT middleware.
func actor(c echo.Context) (uint64, bool, error) {
	uid, ok := c.Get(middleware.ContextUserID).(uint64)
	if !ok || uid == 0 {
		return 0, false, echo.ErrUnauthorized
	}
	role, _ := c.Get(middleware.ContextRole).(string)
	return uid, role == model.RoleAdmin, nil
}

// bindStrict decodes a JSON body into v, rejecting bodies that carry
// fields the payload type does not declare.
func bindStrict(c echo.Context, v interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeError maps repository failures onto stable JSON error payloads.
// Every kind gets a distinct code so API consumers can branch
// programmatically instead of matching message text.
func writeError(c echo.Context, err error) error {
	var ve *repository.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  ve.Error(),
			"code":   "VALIDATION_ERROR",
			"fields": ve.Fields,
		})
	}
	switch {
	case errors.Is(err, repository.ErrClassNotFound),
		errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error(), "code": "NOT_FOUND"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error(), "code": "FORBIDDEN"})
	case errors.Is(err, repository.ErrNotBookable):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "code": "NOT_BOOKABLE"})
	case errors.Is(err, repository.ErrNoAvailableSlots):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "code": "NO_AVAILABLE_SLOTS"})
	case errors.Is(err, repository.ErrDuplicateBooking):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "code": "DUPLICATE_BOOKING"})
	case errors.Is(err, repository.ErrAlreadyCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "code": "ALREADY_CANCELLED"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "code": "CONFLICT"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// classResponse is the JSON shape of a fitness class. date_time is
// rendered in the request's display timezone; everything else is
// timezone independent.
type classResponse struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	ClassType       string `json:"class_type"`
	Instructor      string `json:"instructor"`
	DurationMinutes uint32 `json:"duration_minutes"`
	DateTime        string `json:"date_time"`
	TotalSlots      uint32 `json:"total_slots"`
	AvailableSlots  uint32 `json:"available_slots"`
	IsBookable      bool   `json:"is_bookable"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func renderClass(cl *model.FitnessClass, loc *time.Location) classResponse {
	now := time.Now().UTC()
	return classResponse{
		ID:              cl.ID,
		Name:            cl.Name,
		ClassType:       cl.ClassType,
		Instructor:      cl.Instructor,
		DurationMinutes: cl.DurationMinutes,
		DateTime:        cl.DateTime.In(loc).Format(dateTimeLayout),
		TotalSlots:      cl.TotalSlots,
		AvailableSlots:  cl.AvailableSlots,
		IsBookable:      cl.IsBookable(now),
		CreatedAt:       cl.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       cl.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
