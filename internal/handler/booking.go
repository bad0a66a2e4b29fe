package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-class-booking/internal/middleware"
	"github.com/iliyamo/fitness-class-booking/internal/model"
	"github.com/iliyamo/fitness-class-booking/internal/queue"
	"github.com/iliyamo/fitness-class-booking/internal/repository"
	queue_publisher "github.com/iliyamo/fitness-class-booking/internal/service"
)

// BookingHandler serves reserve, cancel and listing. All invariant
// enforcement lives in the ledger; this layer parses input, passes the
// authenticated actor down and renders results. After a successful
// mutation it publishes a booking event; publishing is best effort and
// never fails the request.
type BookingHandler struct {
	Ledger  BookingLedger
	publish func(ctx context.Context, queueName string, ev queue.BookingEvent) error
}

func NewBookingHandler(ledger BookingLedger) *BookingHandler {
	if ledger == nil {
		panic("nil ledger passed to NewBookingHandler")
	}
	return &BookingHandler{Ledger: ledger, publish: queue_publisher.PublishBookingEvent}
}

type reserveReq struct {
	ClassID uint64 `json:"class_id"`
}

// bookingResponse renders a booking row; class context comes from the
// snapshot returned by the ledger.
type bookingResponse struct {
	ID          uint64  `json:"id"`
	Reference   string  `json:"reference"`
	ClassID     uint64  `json:"class_id"`
	ClassName   string  `json:"class_name"`
	Status      string  `json:"status"`
	BookedAt    string  `json:"booked_at"`
	CancelledAt *string `json:"cancelled_at,omitempty"`
}

func renderBooking(b *model.Booking, className string) bookingResponse {
	resp := bookingResponse{
		ID:        b.ID,
		Reference: b.Reference,
		ClassID:   b.ClassID,
		ClassName: className,
		Status:    b.Status,
		BookedAt:  b.BookedAt.UTC().Format(time.RFC3339),
	}
	if b.CancelledAt != nil {
		s := b.CancelledAt.UTC().Format(time.RFC3339)
		resp.CancelledAt = &s
	}
	return resp
}

func bookingEvent(b *model.Booking, cl *model.FitnessClass, at time.Time) queue.BookingEvent {
	return queue.BookingEvent{
		BookingID:      b.ID,
		Reference:      b.Reference,
		UserID:         b.UserID,
		ClassID:        cl.ID,
		ClassName:      cl.Name,
		ClassType:      cl.ClassType,
		Instructor:     cl.Instructor,
		StartsAt:       cl.DateTime.UTC().Format(time.RFC3339),
		Status:         b.Status,
		AvailableSlots: cl.AvailableSlots,
		OccurredAt:     at.UTC().Format(time.RFC3339),
	}
}

// Reserve handles POST /v1/book. Body: {"class_id": N}. On success one
// slot is consumed and a CONFIRMED booking returned; the distinct
// error codes (NOT_FOUND, NOT_BOOKABLE, DUPLICATE_BOOKING,
// NO_AVAILABLE_SLOTS, CONFLICT) come straight from the ledger.
func (h *BookingHandler) Reserve(c echo.Context) error {
	uid, _, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reserveReq
	if err := bindStrict(c, &req); err != nil || req.ClassID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "class_id is required", "code": "VALIDATION_ERROR"})
	}

	booking, class, err := h.Ledger.Reserve(c.Request().Context(), uid, req.ClassID)
	if err != nil {
		return writeError(c, err)
	}

	// Publish outside the transaction; a broker outage must not undo a
	// committed reservation.
	_ = h.publish(c.Request().Context(), queue.BookingConfirmedQueue, bookingEvent(booking, class, booking.BookedAt))

	return c.JSON(http.StatusCreated, echo.Map{
		"item":            renderBooking(booking, class.Name),
		"available_slots": class.AvailableSlots,
	})
}

// Cancel handles POST /v1/bookings/:id/cancel. The booking owner or an
// admin may cancel; the freed slot is returned to the class in the
// same transaction.
func (h *BookingHandler) Cancel(c echo.Context) error {
	uid, isAdmin, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id", "code": "VALIDATION_ERROR"})
	}

	booking, class, err := h.Ledger.Cancel(c.Request().Context(), id, uid, isAdmin)
	if err != nil {
		return writeError(c, err)
	}

	at := time.Now().UTC()
	if booking.CancelledAt != nil {
		at = *booking.CancelledAt
	}
	_ = h.publish(c.Request().Context(), queue.BookingCancelledQueue, bookingEvent(booking, class, at))

	return c.JSON(http.StatusOK, echo.Map{
		"message":         "booking cancelled successfully",
		"item":            renderBooking(booking, class.Name),
		"available_slots": class.AvailableSlots,
	})
}

// List handles GET /v1/bookings. Members see their own bookings;
// admins see everyone's and may narrow with ?email= and ?status=.
func (h *BookingHandler) List(c echo.Context) error {
	uid, isAdmin, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var details []repository.BookingDetail
	if isAdmin {
		details, err = h.Ledger.ListAll(c.Request().Context(), repository.BookingListFilter{
			Email:  c.QueryParam("email"),
			Status: c.QueryParam("status"),
		})
	} else {
		details, err = h.Ledger.ListByUser(c.Request().Context(), uid)
	}
	if err != nil {
		return writeError(c, err)
	}

	loc := middleware.LocationFrom(c)
	items := make([]echo.Map, 0, len(details))
	for _, d := range details {
		item := echo.Map{
			"id":         d.ID,
			"reference":  d.Reference,
			"class_id":   d.ClassID,
			"class_name": d.ClassName,
			"class_type": d.ClassType,
			"instructor": d.Instructor,
			"date_time":  d.DateTime.In(loc).Format(dateTimeLayout),
			"status":     d.Status,
			"booked_at":  d.BookedAt.UTC().Format(time.RFC3339),
		}
		if isAdmin {
			item["user_id"] = d.UserID
			item["user_email"] = d.UserEmail
		}
		if d.CancelledAt != nil {
			item["cancelled_at"] = d.CancelledAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
