package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fitness-class-booking/internal/middleware"
	"github.com/iliyamo/fitness-class-booking/internal/model"
	"github.com/iliyamo/fitness-class-booking/internal/repository"
)

type stubStats struct {
	adminFn func(ctx context.Context) (*repository.AdminStats, error)
	userFn  func(ctx context.Context, userID uint64) (*repository.UserStats, error)
}

func (s *stubStats) Admin(ctx context.Context) (*repository.AdminStats, error) {
	return s.adminFn(ctx)
}

func (s *stubStats) ForUser(ctx context.Context, userID uint64) (*repository.UserStats, error) {
	return s.userFn(ctx, userID)
}

func TestAdminStats(t *testing.T) {
	h := NewStatsHandler(&stubStats{
		adminFn: func(context.Context) (*repository.AdminStats, error) {
			return &repository.AdminStats{
				TotalClasses:      12,
				TotalBookings:     80,
				ConfirmedBookings: 70,
				CancelledBookings: 10,
				PopularClasses: []repository.PopularClass{
					{Name: "Morning Yoga", ClassType: model.ClassTypeYoga, Instructor: "Jane Smith", BookingCount: 25},
				},
			}, nil
		},
	})

	c, rec := testCtx(http.MethodGet, "/v1/stats", "")
	asUser(c, 1, model.RoleAdmin)
	require.NoError(t, h.Admin(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(12), body["total_classes"])
	assert.Equal(t, float64(80), body["total_bookings"])
	assert.Equal(t, float64(70), body["confirmed_bookings"])
	assert.Equal(t, float64(10), body["cancelled_bookings"])
	popular := body["popular_classes"].([]interface{})
	require.Len(t, popular, 1)
	assert.Equal(t, "Morning Yoga", popular[0].(map[string]interface{})["name"])
}

func TestUserStatsRendersUpcomingInDisplayTimezone(t *testing.T) {
	var askedUser uint64
	h := NewStatsHandler(&stubStats{
		userFn: func(_ context.Context, userID uint64) (*repository.UserStats, error) {
			askedUser = userID
			return &repository.UserStats{
				ConfirmedBookings: 3,
				CancelledBookings: 1,
				UpcomingCount:     2,
				Upcoming: []repository.UpcomingBooking{
					{
						ClassName:       "Morning Yoga",
						ClassType:       model.ClassTypeYoga,
						DurationMinutes: 60,
						DateTime:        time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC),
						Instructor:      "Jane Smith",
					},
				},
			}, nil
		},
	})

	c, rec := testCtx(http.MethodGet, "/v1/stats/me", "")
	asUser(c, 5, model.RoleMember)
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	c.Set(middleware.ContextLocation, kolkata)
	require.NoError(t, h.Me(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(5), askedUser)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(3), body["bookings"])
	assert.Equal(t, float64(1), body["cancelled_bookings"])
	assert.Equal(t, float64(2), body["upcoming_classes"])
	details := body["upcoming_classes_details"].([]interface{})
	require.Len(t, details, 1)
	first := details[0].(map[string]interface{})
	assert.Equal(t, "01/06/2030 14:30", first["date_time"])
	assert.Equal(t, "Jane Smith", first["instructor"])
}
