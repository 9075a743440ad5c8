package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/snow-school-api/internal/models"
)

// InstructorRepository manages persistence for instructors.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs the repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// List returns instructors ordered by surname.
func (r *InstructorRepository) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error) {
	base := "FROM instructors"
	var args []interface{}
	if filter.Search != "" {
		base += " WHERE (LOWER(first_name) LIKE $1 OR LOWER(last_name) LIKE $1 OR ci LIKE $1)"
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	page := filter.Page.Normalize()

	query := fmt.Sprintf("SELECT ci, first_name, last_name %s ORDER BY last_name ASC, ci ASC LIMIT %d OFFSET %d", base, page.PageSize, page.Offset())
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list instructors: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count instructors: %w", err)
	}
	return instructors, total, nil
}

// FindByCI returns an instructor by national id.
func (r *InstructorRepository) FindByCI(ctx context.Context, exec sqlx.ExtContext, ci string) (*models.Instructor, error) {
	const query = `SELECT ci, first_name, last_name FROM instructors WHERE ci = $1`
	var instructor models.Instructor
	if err := sqlx.GetContext(ctx, runner(r.db, exec), &instructor, query, ci); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// Create inserts an instructor.
func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	const query = `INSERT INTO instructors (ci, first_name, last_name) VALUES (:ci, :first_name, :last_name)`
	if _, err := r.db.NamedExecContext(ctx, query, instructor); err != nil {
		return fmt.Errorf("create instructor: %w", err)
	}
	return nil
}

// Update changes the instructor names.
func (r *InstructorRepository) Update(ctx context.Context, instructor *models.Instructor) error {
	const query = `UPDATE instructors SET first_name = :first_name, last_name = :last_name WHERE ci = :ci`
	res, err := r.db.NamedExecContext(ctx, query, instructor)
	if err != nil {
		return fmt.Errorf("update instructor: %w", err)
	}
	return affectedOne(res, "update instructor")
}

// Delete removes an instructor with their undelivered classes.
// Returns ErrDeliveredClasses when the instructor taught a delivered class.
func (r *InstructorRepository) Delete(ctx context.Context, ci string) error {
	return deleteUnlessDelivered(ctx, r.db, "delete instructor",
		`SELECT delivered FROM classes WHERE instructor_ci = $1 FOR UPDATE`,
		`DELETE FROM classes WHERE instructor_ci = $1`,
		`DELETE FROM instructors WHERE ci = $1`,
		ci,
	)
}
