package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/snow-school-api/internal/models"
)

const classDetailSelect = `SELECT c.id, c.instructor_ci, c.activity_id, c.shift_id, c.delivered,
i.first_name || ' ' || i.last_name AS instructor_name,
a.description AS activity_description,
s.start_time, s.end_time,
(SELECT COUNT(*) FROM enrollments e WHERE e.class_id = c.id) AS student_count
FROM classes c
JOIN instructors i ON i.ci = c.instructor_ci
JOIN activities a ON a.id = c.activity_id
JOIN shifts s ON s.id = c.shift_id`

// ClassRepository handles persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes with display data and the total count.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error) {
	var conditions []string
	var args []interface{}
	if filter.InstructorCI != "" {
		args = append(args, filter.InstructorCI)
		conditions = append(conditions, fmt.Sprintf("c.instructor_ci = $%d", len(args)))
	}
	if filter.ActivityID > 0 {
		args = append(args, filter.ActivityID)
		conditions = append(conditions, fmt.Sprintf("c.activity_id = $%d", len(args)))
	}
	if filter.ShiftID > 0 {
		args = append(args, filter.ShiftID)
		conditions = append(conditions, fmt.Sprintf("c.shift_id = $%d", len(args)))
	}
	if filter.Delivered != nil {
		args = append(args, *filter.Delivered)
		conditions = append(conditions, fmt.Sprintf("c.delivered = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	page := filter.Page.Normalize()

	query := fmt.Sprintf("%s%s ORDER BY s.start_time ASC, c.id ASC LIMIT %d OFFSET %d", classDetailSelect, where, page.PageSize, page.Offset())
	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM classes c"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// FindDetailByID returns a class with display data.
func (r *ClassRepository) FindDetailByID(ctx context.Context, id int64) (*models.ClassDetail, error) {
	var class models.ClassDetail
	if err := r.db.GetContext(ctx, &class, classDetailSelect+" WHERE c.id = $1", id); err != nil {
		return nil, err
	}
	return &class, nil
}

// LockByID loads a class row and locks it until the transaction ends.
func (r *ClassRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Class, error) {
	const query = `SELECT id, instructor_ci, activity_id, shift_id, delivered FROM classes WHERE id = $1 FOR UPDATE`
	var class models.Class
	if err := sqlx.GetContext(ctx, runner(r.db, exec), &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// LockByAssignment loads and locks the class for an (instructor, activity, shift) triple.
func (r *ClassRepository) LockByAssignment(ctx context.Context, exec sqlx.ExtContext, instructorCI string, activityID, shiftID int64) (*models.Class, error) {
	const query = `SELECT id, instructor_ci, activity_id, shift_id, delivered FROM classes
WHERE instructor_ci = $1 AND activity_id = $2 AND shift_id = $3 FOR UPDATE`
	var class models.Class
	if err := sqlx.GetContext(ctx, runner(r.db, exec), &class, query, instructorCI, activityID, shiftID); err != nil {
		return nil, err
	}
	return &class, nil
}

// ReferencesExist reports whether the instructor, activity and shift are all present.
func (r *ClassRepository) ReferencesExist(ctx context.Context, exec sqlx.ExtContext, instructorCI string, activityID, shiftID int64) (bool, error) {
	const query = `SELECT 1 FROM instructors i
JOIN activities a ON a.id = $2
JOIN shifts s ON s.id = $3
WHERE i.ci = $1`
	found, err := exists(ctx, runner(r.db, exec), query, instructorCI, activityID, shiftID)
	if err != nil {
		return false, fmt.Errorf("check class references: %w", err)
	}
	return found, nil
}

// InstructorBusy reports whether the instructor already teaches another class in the shift.
// excludeID skips the class being modified; pass 0 to consider every class.
func (r *ClassRepository) InstructorBusy(ctx context.Context, exec sqlx.ExtContext, instructorCI string, shiftID, excludeID int64) (bool, error) {
	const query = `SELECT 1 FROM classes WHERE instructor_ci = $1 AND shift_id = $2 AND id <> $3 LIMIT 1`
	found, err := exists(ctx, runner(r.db, exec), query, instructorCI, shiftID, excludeID)
	if err != nil {
		return false, fmt.Errorf("check instructor shift: %w", err)
	}
	return found, nil
}

// Create inserts an undelivered class and sets its generated id.
func (r *ClassRepository) Create(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error {
	const query = `INSERT INTO classes (instructor_ci, activity_id, shift_id, delivered) VALUES ($1, $2, $3, FALSE) RETURNING id`
	row := runner(r.db, exec).QueryRowxContext(ctx, query, class.InstructorCI, class.ActivityID, class.ShiftID)
	if err := row.Scan(&class.ID); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	class.Delivered = false
	return nil
}

// UpdateAssignment changes instructor and shift; enrollment shift ids follow through the composite key.
func (r *ClassRepository) UpdateAssignment(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error {
	const query = `UPDATE classes SET instructor_ci = :instructor_ci, shift_id = :shift_id WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, runner(r.db, exec), query, class)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return affectedOne(res, "update class")
}

// MarkDelivered flags the class as delivered.
func (r *ClassRepository) MarkDelivered(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE classes SET delivered = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark class delivered: %w", err)
	}
	return affectedOne(res, "mark class delivered")
}

// Delete removes a class; enrollments cascade.
func (r *ClassRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	res, err := runner(r.db, exec).ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return affectedOne(res, "delete class")
}
