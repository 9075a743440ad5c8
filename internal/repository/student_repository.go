package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/snow-school-api/internal/models"
)

const studentColumns = "ci, first_name, last_name, birth_date, phone, email"

// StudentRepository handles persistence of students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the filter and the total row count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students"
	var args []interface{}
	if filter.Search != "" {
		base += " WHERE (LOWER(first_name) LIKE $1 OR LOWER(last_name) LIKE $1 OR ci LIKE $1)"
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	allowedSorts := map[string]string{
		"ci":       "ci",
		"nombre":   "first_name",
		"apellido": "last_name",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "last_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page.Normalize()

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, ci ASC LIMIT %d OFFSET %d", studentColumns, base, orderBy, order, page.PageSize, page.Offset())
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByCI returns a student by national id.
func (r *StudentRepository) FindByCI(ctx context.Context, exec sqlx.ExtContext, ci string) (*models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE ci = $1"
	var student models.Student
	if err := sqlx.GetContext(ctx, runner(r.db, exec), &student, query, ci); err != nil {
		return nil, err
	}
	return &student, nil
}

// Exists reports whether a student with ci is registered.
func (r *StudentRepository) Exists(ctx context.Context, exec sqlx.ExtContext, ci string) (bool, error) {
	found, err := exists(ctx, runner(r.db, exec), "SELECT 1 FROM students WHERE ci = $1", ci)
	if err != nil {
		return false, fmt.Errorf("check student: %w", err)
	}
	return found, nil
}

// Create inserts a student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (ci, first_name, last_name, birth_date, phone, email)
VALUES (:ci, :first_name, :last_name, :birth_date, :phone, :email)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update rewrites the mutable contact fields of a student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET first_name = :first_name, last_name = :last_name, birth_date = :birth_date,
phone = :phone, email = :email WHERE ci = :ci`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return affectedOne(res, "update student")
}

// Delete removes a student; enrollments cascade. Returns ErrDeliveredClasses
// when the student attended a delivered class.
func (r *StudentRepository) Delete(ctx context.Context, ci string) error {
	return deleteUnlessDelivered(ctx, r.db, "delete student",
		`SELECT c.delivered FROM classes c JOIN enrollments e ON e.class_id = c.id WHERE e.student_ci = $1 FOR SHARE OF c`,
		"",
		"DELETE FROM students WHERE ci = $1",
		ci,
	)
}
