package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/snow-school-api/internal/models"
)

// ShiftRepository persists shifts.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository constructs the repository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// List returns shifts ordered by start time.
func (r *ShiftRepository) List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, int, error) {
	page := filter.Page.Normalize()
	query := fmt.Sprintf("SELECT id, start_time, end_time FROM shifts ORDER BY start_time ASC, id ASC LIMIT %d OFFSET %d", page.PageSize, page.Offset())
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query); err != nil {
		return nil, 0, fmt.Errorf("list shifts: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM shifts"); err != nil {
		return nil, 0, fmt.Errorf("count shifts: %w", err)
	}
	return shifts, total, nil
}

// FindByID returns a shift.
func (r *ShiftRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Shift, error) {
	var shift models.Shift
	if err := sqlx.GetContext(ctx, runner(r.db, exec), &shift, `SELECT id, start_time, end_time FROM shifts WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &shift, nil
}

// Create inserts a shift and sets its generated id.
func (r *ShiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	const query = `INSERT INTO shifts (start_time, end_time) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, shift.StartTime, shift.EndTime).Scan(&shift.ID); err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}

// Update rewrites the shift window.
func (r *ShiftRepository) Update(ctx context.Context, shift *models.Shift) error {
	res, err := r.db.ExecContext(ctx, `UPDATE shifts SET start_time = $1, end_time = $2 WHERE id = $3`, shift.StartTime, shift.EndTime, shift.ID)
	if err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	return affectedOne(res, "update shift")
}

// Delete removes a shift.
func (r *ShiftRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	return affectedOne(res, "delete shift")
}

// CountClasses returns how many classes are scheduled in the shift.
func (r *ShiftRepository) CountClasses(ctx context.Context, id int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM classes WHERE shift_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count shift classes: %w", err)
	}
	return count, nil
}
