package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-class-booking/internal/middleware"
)

// StatsHandler serves the reporting endpoints. Both views are
// read-only rollups; the admin route is gated by RequireRole upstream.
type StatsHandler struct {
	Stats StatsReader
}

func NewStatsHandler(stats StatsReader) *StatsHandler {
	if stats == nil {
		panic("nil stats reader passed to NewStatsHandler")
	}
	return &StatsHandler{Stats: stats}
}

// Admin handles GET /v1/stats: the platform-wide 30-day report.
func (h *StatsHandler) Admin(c echo.Context) error {
	stats, err := h.Stats.Admin(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Me handles GET /v1/stats/me: the caller's booking counts and next
// upcoming classes, with start times in the display timezone.
func (h *StatsHandler) Me(c echo.Context) error {
	uid, _, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	stats, err := h.Stats.ForUser(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err)
	}

	loc := middleware.LocationFrom(c)
	upcoming := make([]echo.Map, 0, len(stats.Upcoming))
	for _, u := range stats.Upcoming {
		upcoming = append(upcoming, echo.Map{
			"name":             u.ClassName,
			"class_type":       u.ClassType,
			"duration_minutes": u.DurationMinutes,
			"date_time":        u.DateTime.In(loc).Format(dateTimeLayout),
			"instructor":       u.Instructor,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"bookings":                stats.ConfirmedBookings,
		"cancelled_bookings":      stats.CancelledBookings,
		"upcoming_classes":        stats.UpcomingCount,
		"upcoming_classes_details": upcoming,
	})
}
