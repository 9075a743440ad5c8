package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/snow-school-api/internal/models"
)

func TestClassRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewClassRepository(db)

	delivered := false
	rows := sqlmock.NewRows([]string{"id", "instructor_ci", "activity_id", "shift_id", "delivered", "instructor_name", "activity_description", "start_time", "end_time", "student_count"}).
		AddRow(1, "1", 1, 1, false, "Juan Pérez", "Snowboard", "09:00:00", "11:00:00", 2)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.instructor_ci = $1 AND c.shift_id = $2 AND c.delivered = $3 ORDER BY s.start_time ASC, c.id ASC LIMIT 20 OFFSET 0")).
		WithArgs("1", int64(1), false).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classes c WHERE c.instructor_ci = $1 AND c.shift_id = $2 AND c.delivered = $3")).
		WithArgs("1", int64(1), false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{InstructorCI: "1", ShiftID: 1, Delivered: &delivered})
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "09:00:00", classes[0].StartTime.String())
	assert.Equal(t, 2, classes[0].StudentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryLockByAssignment(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE instructor_ci = $1 AND activity_id = $2 AND shift_id = $3 FOR UPDATE")).
		WithArgs("1", int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)
	_, err = repo.LockByAssignment(context.Background(), tx, "1", 2, 3)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryReferencesExist(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM instructors i")).
		WithArgs("1", int64(1), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	ok, err := repo.ReferencesExist(context.Background(), nil, "1", 1, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryInstructorBusy(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM classes WHERE instructor_ci = $1 AND shift_id = $2 AND id <> $3 LIMIT 1")).
		WithArgs("1", int64(1), int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	busy, err := repo.InstructorBusy(context.Background(), nil, "1", 1, 0)
	require.NoError(t, err)
	assert.True(t, busy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO classes (instructor_ci, activity_id, shift_id, delivered) VALUES ($1, $2, $3, FALSE) RETURNING id")).
		WithArgs("1", int64(1), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	class := &models.Class{InstructorCI: "1", ActivityID: 1, ShiftID: 1, Delivered: true}
	require.NoError(t, repo.Create(context.Background(), nil, class))
	assert.Equal(t, int64(7), class.ID)
	assert.False(t, class.Delivered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryUpdateAssignment(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE classes SET instructor_ci = ?, shift_id = ? WHERE id = ?")).
		WithArgs("2", int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateAssignment(context.Background(), nil, &models.Class{ID: 7, InstructorCI: "2", ShiftID: 3})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM classes WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), nil, 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
