package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/snow-school-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"ci", "first_name", "last_name", "birth_date", "phone", "email"}).
		AddRow("12345678", "Ana", "Pérez", time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC), "099", "ana@example.com")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT ci, first_name, last_name, birth_date, phone, email FROM students WHERE (LOWER(first_name) LIKE $1 OR LOWER(last_name) LIKE $1 OR ci LIKE $1) ORDER BY first_name DESC, ci ASC LIMIT 20 OFFSET 0")).
		WithArgs("%ana%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE")).
		WithArgs("%ana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Search: "Ana", SortBy: "nombre", SortOrder: "desc"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Pérez", students[0].LastName)
	assert.Equal(t, "2000-01-02", students[0].BirthDate.String())
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListIgnoresUnknownSort(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students ORDER BY last_name ASC, ci ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows([]string{"ci"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.StudentFilter{SortBy: "1; DROP TABLE students", SortOrder: "sideways"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs("12345678", "Ana", "Pérez", sqlmock.AnyArg(), "099", "ana@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	birth, err := models.ParseDate("2000-01-02")
	require.NoError(t, err)
	err = repo.Create(context.Background(), &models.Student{CI: "12345678", FirstName: "Ana", LastName: "Pérez", BirthDate: birth, Phone: "099", Email: "ana@example.com"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Student{CI: "1"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExists(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE ci = $1")).
		WithArgs("12345678").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE ci = $1")).
		WithArgs("999").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	found, err := repo.Exists(context.Background(), nil, "12345678")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.Exists(context.Background(), nil, "999")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT c.delivered FROM classes c JOIN enrollments e ON e.class_id = c.id WHERE e.student_ci = $1 FOR SHARE OF c")).
		WithArgs("12345678").
		WillReturnRows(sqlmock.NewRows([]string{"delivered"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE ci = $1")).
		WithArgs("12345678").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "12345678"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteBlockedByDeliveredClass(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR SHARE OF c")).
		WithArgs("12345678").
		WillReturnRows(sqlmock.NewRows([]string{"delivered"}).AddRow(false).AddRow(true))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "12345678")
	assert.ErrorIs(t, err, ErrDeliveredClasses)
	assert.NoError(t, mock.ExpectationsWereMet())
}
