package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/snow-school-api/internal/models"
)

// ReportRepository runs the aggregate queries behind the reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ActivitiesByRevenue sums the activity cost plus rented equipment cost per enrollment.
func (r *ReportRepository) ActivitiesByRevenue(ctx context.Context) ([]models.ActivityRevenue, error) {
	const query = `SELECT a.id AS activity_id, a.description,
COALESCE(SUM(CASE WHEN e.student_ci IS NULL THEN 0 ELSE a.cost + COALESCE(eq.cost, 0) END), 0) AS revenue
FROM activities a
LEFT JOIN classes c ON c.activity_id = a.id
LEFT JOIN enrollments e ON e.class_id = c.id
LEFT JOIN equipment eq ON eq.id = e.equipment_id
GROUP BY a.id, a.description
ORDER BY revenue DESC, a.id ASC`
	var rows []models.ActivityRevenue
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("activities by revenue: %w", err)
	}
	return rows, nil
}

// ActivitiesByStudents counts enrollments per activity.
func (r *ReportRepository) ActivitiesByStudents(ctx context.Context) ([]models.ActivityStudents, error) {
	const query = `SELECT a.id AS activity_id, a.description, COUNT(e.student_ci) AS students
FROM activities a
LEFT JOIN classes c ON c.activity_id = a.id
LEFT JOIN enrollments e ON e.class_id = c.id
GROUP BY a.id, a.description
ORDER BY students DESC, a.id ASC`
	var rows []models.ActivityStudents
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("activities by students: %w", err)
	}
	return rows, nil
}

// ShiftsByClasses counts classes per shift.
func (r *ReportRepository) ShiftsByClasses(ctx context.Context) ([]models.ShiftClasses, error) {
	const query = `SELECT s.id AS shift_id, s.start_time, s.end_time, COUNT(c.id) AS classes
FROM shifts s
LEFT JOIN classes c ON c.shift_id = s.id
GROUP BY s.id, s.start_time, s.end_time
ORDER BY classes DESC, s.start_time ASC`
	var rows []models.ShiftClasses
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("shifts by classes: %w", err)
	}
	return rows, nil
}
