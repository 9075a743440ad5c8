package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/snow-school-api/internal/models"
)

// ActivityRepository manages activities and the equipment rented for them.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// List returns activities ordered by id.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error) {
	base := "FROM activities"
	var args []interface{}
	if filter.Search != "" {
		base += " WHERE LOWER(description) LIKE $1"
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	page := filter.Page.Normalize()

	query := fmt.Sprintf("SELECT id, description, cost %s ORDER BY id ASC LIMIT %d OFFSET %d", base, page.PageSize, page.Offset())
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}
	return activities, total, nil
}

// FindByID returns an activity.
func (r *ActivityRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Activity, error) {
	var activity models.Activity
	if err := sqlx.GetContext(ctx, runner(r.db, exec), &activity, `SELECT id, description, cost FROM activities WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &activity, nil
}

// Create inserts an activity and sets its generated id.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	const query = `INSERT INTO activities (description, cost) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, activity.Description, activity.Cost).Scan(&activity.ID); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// Update changes description and cost.
func (r *ActivityRepository) Update(ctx context.Context, activity *models.Activity) error {
	res, err := r.db.NamedExecContext(ctx, `UPDATE activities SET description = :description, cost = :cost WHERE id = :id`, activity)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return affectedOne(res, "update activity")
}

// Delete removes an activity, its equipment and its undelivered classes.
// Returns ErrDeliveredClasses when any of its classes was delivered.
func (r *ActivityRepository) Delete(ctx context.Context, id int64) error {
	return deleteUnlessDelivered(ctx, r.db, "delete activity",
		`SELECT delivered FROM classes WHERE activity_id = $1 FOR UPDATE`,
		`DELETE FROM classes WHERE activity_id = $1`,
		`DELETE FROM activities WHERE id = $1`,
		id,
	)
}

// ListEquipment returns the equipment rentable for an activity.
func (r *ActivityRepository) ListEquipment(ctx context.Context, activityID int64) ([]models.Equipment, error) {
	const query = `SELECT id, activity_id, description, cost FROM equipment WHERE activity_id = $1 ORDER BY id`
	var items []models.Equipment
	if err := r.db.SelectContext(ctx, &items, query, activityID); err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return items, nil
}

// FindEquipment returns a piece of equipment.
func (r *ActivityRepository) FindEquipment(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Equipment, error) {
	const query = `SELECT id, activity_id, description, cost FROM equipment WHERE id = $1`
	var item models.Equipment
	if err := sqlx.GetContext(ctx, runner(r.db, exec), &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateEquipment inserts equipment and sets its generated id.
func (r *ActivityRepository) CreateEquipment(ctx context.Context, item *models.Equipment) error {
	const query = `INSERT INTO equipment (activity_id, description, cost) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, item.ActivityID, item.Description, item.Cost).Scan(&item.ID); err != nil {
		return fmt.Errorf("create equipment: %w", err)
	}
	return nil
}

// UpdateEquipment changes description and cost of equipment.
func (r *ActivityRepository) UpdateEquipment(ctx context.Context, item *models.Equipment) error {
	res, err := r.db.NamedExecContext(ctx, `UPDATE equipment SET description = :description, cost = :cost WHERE id = :id`, item)
	if err != nil {
		return fmt.Errorf("update equipment: %w", err)
	}
	return affectedOne(res, "update equipment")
}

// DeleteEquipment removes equipment; enrollments renting it keep their seat.
func (r *ActivityRepository) DeleteEquipment(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete equipment: %w", err)
	}
	return affectedOne(res, "delete equipment")
}
