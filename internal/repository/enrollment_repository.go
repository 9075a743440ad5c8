package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/snow-school-api/internal/models"
)

const enrollmentDetailSelect = `SELECT e.class_id, e.student_ci, e.shift_id, e.equipment_id,
st.first_name || ' ' || st.last_name AS student_name,
c.instructor_ci, c.activity_id, c.delivered,
a.description AS activity_description,
s.start_time, s.end_time,
eq.description AS equipment_description
FROM enrollments e
JOIN students st ON st.ci = e.student_ci
JOIN classes c ON c.id = e.class_id
JOIN activities a ON a.id = c.activity_id
JOIN shifts s ON s.id = c.shift_id
LEFT JOIN equipment eq ON eq.id = e.equipment_id`

// EnrollmentRepository persists class enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments matching the filter.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var conditions []string
	var args []interface{}
	if filter.StudentCI != "" {
		args = append(args, filter.StudentCI)
		conditions = append(conditions, fmt.Sprintf("e.student_ci = $%d", len(args)))
	}
	if filter.ClassID > 0 {
		args = append(args, filter.ClassID)
		conditions = append(conditions, fmt.Sprintf("e.class_id = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	page := filter.Page.Normalize()

	query := fmt.Sprintf("%s%s ORDER BY s.start_time ASC, e.class_id ASC, e.student_ci ASC LIMIT %d OFFSET %d", enrollmentDetailSelect, where, page.PageSize, page.Offset())
	var items []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM enrollments e"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return items, total, nil
}

// ListByClass returns the roster of a class.
func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID int64) ([]models.EnrollmentDetail, error) {
	var items []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &items, enrollmentDetailSelect+" WHERE e.class_id = $1 ORDER BY st.last_name, st.first_name", classID); err != nil {
		return nil, fmt.Errorf("list class roster: %w", err)
	}
	return items, nil
}

// StudentCIs returns the ci of every student enrolled in the class.
func (r *EnrollmentRepository) StudentCIs(ctx context.Context, exec sqlx.ExtContext, classID int64) ([]string, error) {
	var cis []string
	if err := sqlx.SelectContext(ctx, runner(r.db, exec), &cis, `SELECT student_ci FROM enrollments WHERE class_id = $1 ORDER BY student_ci`, classID); err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	return cis, nil
}

// Exists reports whether the student is already enrolled in the class.
func (r *EnrollmentRepository) Exists(ctx context.Context, exec sqlx.ExtContext, classID int64, studentCI string) (bool, error) {
	found, err := exists(ctx, runner(r.db, exec), `SELECT 1 FROM enrollments WHERE class_id = $1 AND student_ci = $2`, classID, studentCI)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return found, nil
}

// StudentBusy reports whether the student holds an enrollment in another class of the shift.
func (r *EnrollmentRepository) StudentBusy(ctx context.Context, exec sqlx.ExtContext, studentCI string, shiftID, excludeClassID int64) (bool, error) {
	const query = `SELECT 1 FROM enrollments e JOIN classes c ON c.id = e.class_id
WHERE e.student_ci = $1 AND c.shift_id = $2 AND e.class_id <> $3 LIMIT 1`
	found, err := exists(ctx, runner(r.db, exec), query, studentCI, shiftID, excludeClassID)
	if err != nil {
		return false, fmt.Errorf("check student shift: %w", err)
	}
	return found, nil
}

// Create inserts an enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	const query = `INSERT INTO enrollments (class_id, student_ci, shift_id, equipment_id)
VALUES (:class_id, :student_ci, :shift_id, :equipment_id)`
	if _, err := sqlx.NamedExecContext(ctx, runner(r.db, exec), query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, classID int64, studentCI string) error {
	res, err := runner(r.db, exec).ExecContext(ctx, `DELETE FROM enrollments WHERE class_id = $1 AND student_ci = $2`, classID, studentCI)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return affectedOne(res, "delete enrollment")
}
