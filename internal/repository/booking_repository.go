package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/iliyamo/fitness-class-booking/internal/model"
)

// BookingRepo is the booking ledger. It owns the two invariants of the
// system: the number of CONFIRMED bookings for a class never exceeds
// total_slots, and a user holds at most one CONFIRMED booking per
// class. Both Reserve and Cancel run as a single transaction that
// locks the class row with SELECT ... FOR UPDATE, so the slot counter
// and the booking row always move together and concurrent callers
// racing for the last slot serialize on the row lock.
type BookingRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// reserveGuard applies the reservation preconditions, in order: the
// class must be upcoming, the user must not already hold an active
// booking, and a slot must be free. The class passed in must be read
// under the row lock so the counter cannot move underneath the check.
func reserveGuard(c *model.FitnessClass, hasActive bool, now time.Time) error {
	if !c.IsUpcoming(now) {
		return ErrNotBookable
	}
	if hasActive {
		return ErrDuplicateBooking
	}
	if c.AvailableSlots == 0 {
		return ErrNoAvailableSlots
	}
	return nil
}

// translateMySQLError maps engine-level failures onto the ledger error
// taxonomy. Deadlocks (1213) and lock wait timeouts (1205) become
// ErrConflict, which the caller may retry. A duplicate key on the
// active-booking unique index (1062) becomes ErrDuplicateBooking; the
// guard normally catches duplicates first, but the index is the final
// arbiter.
func translateMySQLError(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1213, 1205:
			return ErrConflict
		case 1062:
			return ErrDuplicateBooking
		}
	}
	return err
}

// lockClassTx loads a class row under FOR UPDATE within tx. Returns
// ErrClassNotFound when the id does not exist.
func (r *BookingRepo) lockClassTx(ctx context.Context, tx *sql.Tx, classID uint64) (*model.FitnessClass, error) {
	const q = `SELECT id, name, class_type, instructor, duration_minutes, date_time,
					  total_slots, available_slots, created_at, updated_at
			   FROM classes WHERE id = ? FOR UPDATE`
	var c model.FitnessClass
	err := tx.QueryRowContext(ctx, q, classID).Scan(
		&c.ID, &c.Name, &c.ClassType, &c.Instructor, &c.DurationMinutes, &c.DateTime,
		&c.TotalSlots, &c.AvailableSlots, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, translateMySQLError(err)
	}
	return &c, nil
}

// Reserve books one slot in a class for a user. Exactly one slot is
// consumed and exactly one CONFIRMED booking row created per
// successful call; on any failure neither write is applied. The
// returned class snapshot reflects the decremented counter.
func (r *BookingRepo) Reserve(ctx context.Context, userID, classID uint64) (*model.Booking, *model.FitnessClass, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	class, err := r.lockClassTx(ctx, tx, classID)
	if err != nil {
		return nil, nil, err
	}

	var active int
	const dupQ = `SELECT COUNT(*) FROM bookings WHERE user_id = ? AND class_id = ? AND status = ?`
	if err := tx.QueryRowContext(ctx, dupQ, userID, classID, model.BookingStatusConfirmed).Scan(&active); err != nil {
		return nil, nil, translateMySQLError(err)
	}

	now := r.now()
	if err := reserveGuard(class, active > 0, now); err != nil {
		return nil, nil, err
	}

	const dec = `UPDATE classes SET available_slots = available_slots - 1 WHERE id = ?`
	if _, err := tx.ExecContext(ctx, dec, classID); err != nil {
		return nil, nil, translateMySQLError(err)
	}

	booking := &model.Booking{
		Reference: uuid.NewString(),
		UserID:    userID,
		ClassID:   classID,
		Status:    model.BookingStatusConfirmed,
		BookedAt:  now,
	}
	const ins = `INSERT INTO bookings (reference, user_id, class_id, status, booked_at)
				 VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, ins,
		booking.Reference, booking.UserID, booking.ClassID, booking.Status, booking.BookedAt)
	if err != nil {
		return nil, nil, translateMySQLError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, nil, err
	}
	booking.ID = uint64(id)

	if err := tx.Commit(); err != nil {
		return nil, nil, translateMySQLError(err)
	}
	committed = true
	class.AvailableSlots--
	return booking, class, nil
}

// Cancel flips a CONFIRMED booking to CANCELLED and returns its slot
// to the class, atomically. The actor must be the booking owner or an
// admin. The slot restore is capped at total_slots so a stray extra
// cancel can never push the counter past capacity.
//
// Lock ordering matches Reserve: the class row is locked first, then
// the booking row, so the two operations cannot deadlock each other.
func (r *BookingRepo) Cancel(ctx context.Context, bookingID, actorID uint64, actorIsAdmin bool) (*model.Booking, *model.FitnessClass, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Unlocked pre-read to learn the class id; ownership and status are
	// re-checked under the lock below.
	var classID uint64
	const pre = `SELECT class_id FROM bookings WHERE id = ?`
	if err := tx.QueryRowContext(ctx, pre, bookingID).Scan(&classID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrBookingNotFound
		}
		return nil, nil, translateMySQLError(err)
	}

	class, err := r.lockClassTx(ctx, tx, classID)
	if err != nil {
		return nil, nil, err
	}

	var b model.Booking
	var cancelledAt sql.NullTime
	const q = `SELECT id, reference, user_id, class_id, status, booked_at, cancelled_at
			   FROM bookings WHERE id = ? FOR UPDATE`
	err = tx.QueryRowContext(ctx, q, bookingID).Scan(
		&b.ID, &b.Reference, &b.UserID, &b.ClassID, &b.Status, &b.BookedAt, &cancelledAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrBookingNotFound
		}
		return nil, nil, translateMySQLError(err)
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}

	if !actorIsAdmin && b.UserID != actorID {
		return nil, nil, ErrForbidden
	}
	if b.Status != model.BookingStatusConfirmed {
		return nil, nil, ErrAlreadyCancelled
	}

	now := r.now()
	const upd = `UPDATE bookings SET status = ?, cancelled_at = ? WHERE id = ? AND status = ?`
	result, err := tx.ExecContext(ctx, upd,
		model.BookingStatusCancelled, now, bookingID, model.BookingStatusConfirmed)
	if err != nil {
		return nil, nil, translateMySQLError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, nil, err
	}
	if n == 0 {
		return nil, nil, ErrAlreadyCancelled
	}

	const restore = `UPDATE classes SET available_slots = LEAST(available_slots + 1, total_slots) WHERE id = ?`
	if _, err := tx.ExecContext(ctx, restore, classID); err != nil {
		return nil, nil, translateMySQLError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, translateMySQLError(err)
	}
	committed = true
	b.Status = model.BookingStatusCancelled
	b.CancelledAt = &now
	if class.AvailableSlots < class.TotalSlots {
		class.AvailableSlots++
	}
	return &b, class, nil
}

// BookingDetail is a booking joined with the class it belongs to and
// the owner's email, as returned by the listing queries.
type BookingDetail struct {
	ID          uint64     `json:"id"`
	Reference   string     `json:"reference"`
	UserID      uint64     `json:"user_id"`
	UserEmail   string     `json:"user_email"`
	ClassID     uint64     `json:"class_id"`
	ClassName   string     `json:"class_name"`
	ClassType   string     `json:"class_type"`
	Instructor  string     `json:"instructor"`
	DateTime    time.Time  `json:"-"`
	Status      string     `json:"status"`
	BookedAt    time.Time  `json:"booked_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

const bookingDetailSelect = `SELECT b.id, b.reference, b.user_id, u.email,
									b.class_id, c.name, c.class_type, c.instructor, c.date_time,
									b.status, b.booked_at, b.cancelled_at
							 FROM bookings b
							 JOIN users u ON u.id = b.user_id
							 JOIN classes c ON c.id = b.class_id`

func scanBookingDetails(rows *sql.Rows) ([]BookingDetail, error) {
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var cancelledAt sql.NullTime
		if err := rows.Scan(
			&d.ID, &d.Reference, &d.UserID, &d.UserEmail,
			&d.ClassID, &d.ClassName, &d.ClassType, &d.Instructor, &d.DateTime,
			&d.Status, &d.BookedAt, &cancelledAt,
		); err != nil {
			return nil, err
		}
		if cancelledAt.Valid {
			t := cancelledAt.Time
			d.CancelledAt = &t
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// ListByUser returns all bookings belonging to a user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	q := bookingDetailSelect + ` WHERE b.user_id = ? ORDER BY b.booked_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookingDetails(rows)
}

// BookingListFilter narrows the admin listing. Email restricts to the
// bookings of one user; Status restricts to CONFIRMED or CANCELLED
// rows and is matched case-insensitively.
type BookingListFilter struct {
	Email  string
	Status string
}

// ListAll returns bookings across all users for admins, newest first,
// optionally filtered by owner email and status.
func (r *BookingRepo) ListAll(ctx context.Context, filter BookingListFilter) ([]BookingDetail, error) {
	q := bookingDetailSelect
	conds := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if filter.Email != "" {
		conds = append(conds, "u.email = ?")
		args = append(args, filter.Email)
	}
	if filter.Status != "" {
		conds = append(conds, "b.status = ?")
		args = append(args, strings.ToUpper(filter.Status))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY b.booked_at DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookingDetails(rows)
}
