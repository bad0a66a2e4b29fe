package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/fitness-class-booking/internal/model"
)

// ClassRepo provides catalog operations for fitness classes: creation,
// update and deletion by admins, and filtered listing for everyone.
// It validates scheduling constraints at write time. The
// available_slots counter is intentionally out of reach of Update;
// only the booking repository mutates it.
type ClassRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewClassRepo returns a new ClassRepo bound to the given database.
func NewClassRepo(db *sql.DB) *ClassRepo {
	return &ClassRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// ClassSpec carries the writable fields of a fitness class. It is
// used by both Create and Update. AvailableSlots may only be set at
// creation; when nil it defaults to TotalSlots.
type ClassSpec struct {
	Name            string
	ClassType       string
	Instructor      string
	DurationMinutes uint32
	DateTime        time.Time
	TotalSlots      uint32
	AvailableSlots  *uint32
}

// validate checks the spec against the catalog constraints. The
// allowAvailable flag distinguishes creation (where an explicit
// available_slots is accepted) from update (where it is rejected as a
// managed field).
func (r *ClassRepo) validate(spec ClassSpec, allowAvailable bool) error {
	fields := map[string]string{}
	if strings.TrimSpace(spec.Name) == "" {
		fields["name"] = "name is required"
	}
	if !model.ValidClassType(spec.ClassType) {
		fields["class_type"] = "class_type must be one of YOGA, ZUMBA, HIIT"
	}
	if strings.TrimSpace(spec.Instructor) == "" {
		fields["instructor"] = "instructor is required"
	}
	if spec.DurationMinutes == 0 {
		fields["duration_minutes"] = "duration_minutes must be a positive integer"
	}
	if !spec.DateTime.After(r.now()) {
		fields["date_time"] = "the class must be scheduled for a future time"
	}
	if spec.TotalSlots == 0 {
		fields["total_slots"] = "total_slots must be a positive integer"
	}
	if spec.AvailableSlots != nil {
		if !allowAvailable {
			fields["available_slots"] = "available_slots is managed by bookings and cannot be set"
		} else if *spec.AvailableSlots > spec.TotalSlots {
			fields["available_slots"] = "available_slots cannot exceed total_slots"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Create validates the spec and inserts a new class. When the spec
// does not pin available_slots, the counter starts at total_slots.
// The freshly created class is read back and returned so defaults and
// timestamps are populated.
func (r *ClassRepo) Create(ctx context.Context, spec ClassSpec) (*model.FitnessClass, error) {
	if err := r.validate(spec, true); err != nil {
		return nil, err
	}
	available := spec.TotalSlots
	if spec.AvailableSlots != nil {
		available = *spec.AvailableSlots
	}
	const q = `INSERT INTO classes
			   (name, class_type, instructor, duration_minutes, date_time, total_slots, available_slots)
			   VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		spec.Name, spec.ClassType, spec.Instructor, spec.DurationMinutes,
		spec.DateTime.UTC(), spec.TotalSlots, available,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update validates the spec and rewrites the mutable fields of an
// existing class. available_slots is never written here, but it is
// clamped to the new total_slots so the 0..total_slots invariant
// survives a capacity reduction. Returns ErrClassNotFound when the id
// does not exist.
func (r *ClassRepo) Update(ctx context.Context, id uint64, spec ClassSpec) (*model.FitnessClass, error) {
	if err := r.validate(spec, false); err != nil {
		return nil, err
	}
	const q = `UPDATE classes
			   SET name = ?, class_type = ?, instructor = ?, duration_minutes = ?,
				   date_time = ?, total_slots = ?,
				   available_slots = LEAST(available_slots, ?)
			   WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q,
		spec.Name, spec.ClassType, spec.Instructor, spec.DurationMinutes,
		spec.DateTime.UTC(), spec.TotalSlots, spec.TotalSlots, id,
	)
	if err != nil {
		return nil, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// RowsAffected is also 0 when the update is a no-op, so confirm
		// existence before reporting not found.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a class. Bookings referencing it are removed by the
// ON DELETE CASCADE foreign key. Returns ErrClassNotFound when the id
// does not exist.
func (r *ClassRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM classes WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrClassNotFound
	}
	return nil
}

// GetByID returns a single class by primary key, or ErrClassNotFound.
func (r *ClassRepo) GetByID(ctx context.Context, id uint64) (*model.FitnessClass, error) {
	const q = `SELECT id, name, class_type, instructor, duration_minutes, date_time,
					  total_slots, available_slots, created_at, updated_at
			   FROM classes WHERE id = ?`
	var c model.FitnessClass
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.Name, &c.ClassType, &c.Instructor, &c.DurationMinutes, &c.DateTime,
		&c.TotalSlots, &c.AvailableSlots, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ClassFilter narrows the List result. Type restricts to a single
// class type; Date restricts to classes starting on that calendar day
// (UTC). IncludePast additionally returns classes that have already
// started, which the admin screens use; the public listing leaves it
// false.
type ClassFilter struct {
	Type        string
	Date        *time.Time
	IncludePast bool
}

// List returns class snapshots matching the filter, upcoming only by
// default, ordered by start time ascending.
func (r *ClassRepo) List(ctx context.Context, filter ClassFilter) ([]model.FitnessClass, error) {
	q := `SELECT id, name, class_type, instructor, duration_minutes, date_time,
				 total_slots, available_slots, created_at, updated_at
		  FROM classes`
	conds := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if !filter.IncludePast {
		conds = append(conds, "date_time > ?")
		args = append(args, r.now())
	}
	if filter.Type != "" {
		conds = append(conds, "class_type = ?")
		args = append(args, filter.Type)
	}
	if filter.Date != nil {
		conds = append(conds, "DATE(date_time) = ?")
		args = append(args, filter.Date.UTC().Format("2006-01-02"))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY date_time ASC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	classes := make([]model.FitnessClass, 0)
	for rows.Next() {
		var c model.FitnessClass
		if err := rows.Scan(
			&c.ID, &c.Name, &c.ClassType, &c.Instructor, &c.DurationMinutes, &c.DateTime,
			&c.TotalSlots, &c.AvailableSlots, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return classes, nil
}
