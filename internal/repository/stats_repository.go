package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/fitness-class-booking/internal/model"
)

// StatsRepo produces read-only rollups over classes and bookings. It
// never mutates state; every query runs under the connection's default
// isolation, which is enough to avoid observing a half-committed
// reserve or cancel.
type StatsRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewStatsRepo returns a new StatsRepo bound to the given database.
func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// statsWindow is the trailing reporting period for the admin view.
const statsWindow = 30 * 24 * time.Hour

// PopularClass is one entry of the admin popularity ranking.
type PopularClass struct {
	Name         string `json:"name"`
	ClassType    string `json:"class_type"`
	Instructor   string `json:"instructor"`
	BookingCount uint64 `json:"booking_count"`
}

// AdminStats is the platform-wide report over the last 30 days.
// Classes are counted by their scheduled start time, bookings by when
// they were placed.
type AdminStats struct {
	TotalClasses      uint64         `json:"total_classes"`
	TotalBookings     uint64         `json:"total_bookings"`
	ConfirmedBookings uint64         `json:"confirmed_bookings"`
	CancelledBookings uint64         `json:"cancelled_bookings"`
	PopularClasses    []PopularClass `json:"popular_classes"`
}

// Admin computes the admin statistics view. popular_classes holds the
// top five classes by CONFIRMED booking count; ties go to the earlier
// start time, then the lower id, so the ranking is deterministic.
func (r *StatsRepo) Admin(ctx context.Context) (*AdminStats, error) {
	since := r.now().Add(-statsWindow)
	stats := &AdminStats{PopularClasses: make([]PopularClass, 0, 5)}

	const classQ = `SELECT COUNT(*) FROM classes WHERE date_time >= ?`
	if err := r.db.QueryRowContext(ctx, classQ, since).Scan(&stats.TotalClasses); err != nil {
		return nil, err
	}

	const bookingQ = `SELECT COUNT(*),
							 COUNT(IF(status = ?, 1, NULL)),
							 COUNT(IF(status = ?, 1, NULL))
					  FROM bookings WHERE booked_at >= ?`
	if err := r.db.QueryRowContext(ctx, bookingQ,
		model.BookingStatusConfirmed, model.BookingStatusCancelled, since,
	).Scan(&stats.TotalBookings, &stats.ConfirmedBookings, &stats.CancelledBookings); err != nil {
		return nil, err
	}

	const popularQ = `SELECT c.name, c.class_type, c.instructor,
							 COUNT(IF(b.status = ?, 1, NULL)) AS booking_count
					  FROM classes c
					  LEFT JOIN bookings b ON b.class_id = c.id
					  WHERE c.date_time >= ?
					  GROUP BY c.id, c.name, c.class_type, c.instructor, c.date_time
					  ORDER BY booking_count DESC, c.date_time ASC, c.id ASC
					  LIMIT 5`
	rows, err := r.db.QueryContext(ctx, popularQ, model.BookingStatusConfirmed, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p PopularClass
		if err := rows.Scan(&p.Name, &p.ClassType, &p.Instructor, &p.BookingCount); err != nil {
			return nil, err
		}
		stats.PopularClasses = append(stats.PopularClasses, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// UpcomingBooking is one upcoming CONFIRMED booking in the per-user
// view, enriched with the class details a member needs to show up.
type UpcomingBooking struct {
	ClassName       string    `json:"name"`
	ClassType       string    `json:"class_type"`
	DurationMinutes uint32    `json:"duration_minutes"`
	DateTime        time.Time `json:"-"`
	Instructor      string    `json:"instructor"`
}

// UserStats is the per-user profile report.
type UserStats struct {
	ConfirmedBookings uint64            `json:"bookings"`
	CancelledBookings uint64            `json:"cancelled_bookings"`
	UpcomingCount     uint64            `json:"upcoming_classes"`
	Upcoming          []UpcomingBooking `json:"-"`
}

// ForUser computes the per-user view: lifetime confirmed and cancelled
// counts, how many upcoming classes the user holds a slot in, and the
// next five of those ordered by start time.
func (r *StatsRepo) ForUser(ctx context.Context, userID uint64) (*UserStats, error) {
	now := r.now()
	stats := &UserStats{Upcoming: make([]UpcomingBooking, 0, 5)}

	const countQ = `SELECT COUNT(IF(b.status = ?, 1, NULL)),
						   COUNT(IF(b.status = ?, 1, NULL)),
						   COUNT(IF(b.status = ? AND c.date_time > ?, 1, NULL))
					FROM bookings b
					JOIN classes c ON c.id = b.class_id
					WHERE b.user_id = ?`
	if err := r.db.QueryRowContext(ctx, countQ,
		model.BookingStatusConfirmed, model.BookingStatusCancelled,
		model.BookingStatusConfirmed, now, userID,
	).Scan(&stats.ConfirmedBookings, &stats.CancelledBookings, &stats.UpcomingCount); err != nil {
		return nil, err
	}

	const upcomingQ = `SELECT c.name, c.class_type, c.duration_minutes, c.date_time, c.instructor
					   FROM bookings b
					   JOIN classes c ON c.id = b.class_id
					   WHERE b.user_id = ? AND b.status = ? AND c.date_time > ?
					   ORDER BY c.date_time ASC
					   LIMIT 5`
	rows, err := r.db.QueryContext(ctx, upcomingQ, userID, model.BookingStatusConfirmed, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var u UpcomingBooking
		if err := rows.Scan(&u.ClassName, &u.ClassType, &u.DurationMinutes, &u.DateTime, &u.Instructor); err != nil {
			return nil, err
		}
		stats.Upcoming = append(stats.Upcoming, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
