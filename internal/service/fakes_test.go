package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"sort"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/snow-school-api/internal/models"
)

type txProviderMock struct {
	db *sqlx.DB
}

// newTxProviderMock hands out sqlmock transactions. When school is given its
// in-memory state follows the transaction: a rollback restores the state
// captured at begin.
func newTxProviderMock(t *testing.T, school *fakeSchool) (txProvider, sqlmock.Sqlmock) {
	dsn := "snow-school-" + t.Name()
	raw, mock, err := sqlmock.NewWithDSN(dsn, sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	db := raw
	if school != nil {
		db = sql.OpenDB(&schoolConnector{dsn: dsn, driver: raw.Driver(), school: school})
		t.Cleanup(func() { db.Close() })
	}
	return &txProviderMock{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type schoolConnector struct {
	dsn    string
	driver driver.Driver
	school *fakeSchool
}

func (c *schoolConnector) Connect(context.Context) (driver.Conn, error) {
	conn, err := c.driver.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &schoolConn{Conn: conn, school: c.school}, nil
}

func (c *schoolConnector) Driver() driver.Driver { return c.driver }

type schoolConn struct {
	driver.Conn
	school *fakeSchool
}

func (c *schoolConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	var (
		tx  driver.Tx
		err error
	)
	if b, ok := c.Conn.(driver.ConnBeginTx); ok {
		tx, err = b.BeginTx(ctx, opts)
	} else {
		tx, err = c.Conn.Begin() //nolint:staticcheck
	}
	if err != nil {
		return nil, err
	}
	return &schoolTx{Tx: tx, school: c.school, saved: c.school.snapshot()}, nil
}

type schoolTx struct {
	driver.Tx
	school *fakeSchool
	saved  schoolState
}

func (t *schoolTx) Rollback() error {
	t.school.restore(t.saved)
	return t.Tx.Rollback()
}

// fakeSchool keeps every table the scheduling rules read in memory.
type fakeSchool struct {
	instructors map[string]models.Instructor
	activities  map[int64]models.Activity
	shifts      map[int64]models.Shift
	students    map[string]models.Student
	equipment   map[int64]models.Equipment
	classes     map[int64]*models.Class
	enrollments []models.Enrollment
	nextClassID int64

	enrollErr error
}

func newFakeSchool() *fakeSchool {
	return &fakeSchool{
		instructors: map[string]models.Instructor{
			"1": {CI: "1", FirstName: "Juan", LastName: "Pérez"},
			"2": {CI: "2", FirstName: "Lucía", LastName: "Gómez"},
		},
		activities: map[int64]models.Activity{
			1: {ID: 1, Description: "Ski", Cost: 100},
			2: {ID: 2, Description: "Snowboard", Cost: 120},
		},
		shifts: map[int64]models.Shift{
			1: {ID: 1, StartTime: 9 * 3600, EndTime: 11 * 3600},
			2: {ID: 2, StartTime: 12 * 3600, EndTime: 14 * 3600},
		},
		students: map[string]models.Student{
			"12345678": {CI: "12345678", FirstName: "Ana", LastName: "Silva"},
			"87654321": {CI: "87654321", FirstName: "Bruno", LastName: "Díaz"},
			"11111111": {CI: "11111111", FirstName: "Carla", LastName: "Ruiz"},
			"22222222": {CI: "22222222", FirstName: "Diego", LastName: "Sosa"},
		},
		equipment: map[int64]models.Equipment{
			10: {ID: 10, ActivityID: 1, Description: "Esquís", Cost: 30},
			20: {ID: 20, ActivityID: 2, Description: "Tabla", Cost: 40},
		},
		classes: map[int64]*models.Class{},
	}
}

type schoolState struct {
	classes     map[int64]models.Class
	enrollments []models.Enrollment
	nextClassID int64
}

func (f *fakeSchool) snapshot() schoolState {
	state := schoolState{
		classes:     make(map[int64]models.Class, len(f.classes)),
		enrollments: append([]models.Enrollment(nil), f.enrollments...),
		nextClassID: f.nextClassID,
	}
	for id, c := range f.classes {
		state.classes[id] = *c
	}
	return state
}

// restore keeps the class pointers tests already hold.
func (f *fakeSchool) restore(state schoolState) {
	classes := make(map[int64]*models.Class, len(state.classes))
	for id, saved := range state.classes {
		c, ok := f.classes[id]
		if !ok {
			c = new(models.Class)
		}
		*c = saved
		classes[id] = c
	}
	f.classes = classes
	f.enrollments = state.enrollments
	f.nextClassID = state.nextClassID
}

func (f *fakeSchool) addClass(instructorCI string, activityID, shiftID int64, delivered bool) *models.Class {
	f.nextClassID++
	class := &models.Class{ID: f.nextClassID, InstructorCI: instructorCI, ActivityID: activityID, ShiftID: shiftID, Delivered: delivered}
	f.classes[class.ID] = class
	return class
}

func (f *fakeSchool) addEnrollment(classID int64, ci string) {
	f.enrollments = append(f.enrollments, models.Enrollment{ClassID: classID, StudentCI: ci, ShiftID: f.classes[classID].ShiftID})
}

func (f *fakeSchool) enrolledIn(classID int64) []string {
	var cis []string
	for _, e := range f.enrollments {
		if e.ClassID == classID {
			cis = append(cis, e.StudentCI)
		}
	}
	sort.Strings(cis)
	return cis
}

// classes

type fakeClassRepo struct{ *fakeSchool }

func (f fakeClassRepo) ReferencesExist(ctx context.Context, exec sqlx.ExtContext, instructorCI string, activityID, shiftID int64) (bool, error) {
	_, okI := f.instructors[instructorCI]
	_, okA := f.activities[activityID]
	_, okS := f.shifts[shiftID]
	return okI && okA && okS, nil
}

func (f fakeClassRepo) LockByAssignment(ctx context.Context, exec sqlx.ExtContext, instructorCI string, activityID, shiftID int64) (*models.Class, error) {
	for _, c := range f.classes {
		if c.InstructorCI == instructorCI && c.ActivityID == activityID && c.ShiftID == shiftID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeClassRepo) LockByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Class, error) {
	if c, ok := f.classes[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f fakeClassRepo) InstructorBusy(ctx context.Context, exec sqlx.ExtContext, instructorCI string, shiftID, excludeID int64) (bool, error) {
	for _, c := range f.classes {
		if c.InstructorCI == instructorCI && c.ShiftID == shiftID && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeClassRepo) Create(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error {
	created := f.addClass(class.InstructorCI, class.ActivityID, class.ShiftID, false)
	class.ID = created.ID
	return nil
}

func (f fakeClassRepo) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error) {
	var out []models.ClassDetail
	for _, c := range f.classes {
		if filter.InstructorCI != "" && c.InstructorCI != filter.InstructorCI {
			continue
		}
		out = append(out, models.ClassDetail{Class: *c})
	}
	return out, len(out), nil
}

func (f fakeClassRepo) FindDetailByID(ctx context.Context, id int64) (*models.ClassDetail, error) {
	c, ok := f.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	shift := f.shifts[c.ShiftID]
	return &models.ClassDetail{
		Class:               *c,
		ActivityDescription: f.activities[c.ActivityID].Description,
		StartTime:           shift.StartTime,
		EndTime:             shift.EndTime,
		StudentCount:        len(f.enrolledIn(id)),
	}, nil
}

func (f fakeClassRepo) UpdateAssignment(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error {
	c, ok := f.classes[class.ID]
	if !ok {
		return sql.ErrNoRows
	}
	c.InstructorCI = class.InstructorCI
	c.ShiftID = class.ShiftID
	for i := range f.enrollments {
		if f.enrollments[i].ClassID == class.ID {
			f.enrollments[i].ShiftID = class.ShiftID
		}
	}
	return nil
}

func (f fakeClassRepo) MarkDelivered(ctx context.Context, id int64) error {
	c, ok := f.classes[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.Delivered = true
	return nil
}

func (f fakeClassRepo) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	if _, ok := f.classes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.classes, id)
	kept := f.enrollments[:0]
	for _, e := range f.enrollments {
		if e.ClassID != id {
			kept = append(kept, e)
		}
	}
	f.enrollments = kept
	return nil
}

// enrollments

type fakeEnrollmentRepo struct{ *fakeSchool }

func (f fakeEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	var out []models.EnrollmentDetail
	for _, e := range f.enrollments {
		if filter.StudentCI != "" && e.StudentCI != filter.StudentCI {
			continue
		}
		if filter.ClassID > 0 && e.ClassID != filter.ClassID {
			continue
		}
		out = append(out, models.EnrollmentDetail{Enrollment: e})
	}
	return out, len(out), nil
}

func (f fakeEnrollmentRepo) ListByClass(ctx context.Context, classID int64) ([]models.EnrollmentDetail, error) {
	out, _, err := f.List(ctx, models.EnrollmentFilter{ClassID: classID})
	return out, err
}

func (f fakeEnrollmentRepo) StudentCIs(ctx context.Context, exec sqlx.ExtContext, classID int64) ([]string, error) {
	return f.enrolledIn(classID), nil
}

func (f fakeEnrollmentRepo) Exists(ctx context.Context, exec sqlx.ExtContext, classID int64, studentCI string) (bool, error) {
	for _, e := range f.enrollments {
		if e.ClassID == classID && e.StudentCI == studentCI {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeEnrollmentRepo) StudentBusy(ctx context.Context, exec sqlx.ExtContext, studentCI string, shiftID, excludeClassID int64) (bool, error) {
	for _, e := range f.enrollments {
		if e.StudentCI != studentCI || e.ClassID == excludeClassID {
			continue
		}
		if c, ok := f.classes[e.ClassID]; ok && c.ShiftID == shiftID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeEnrollmentRepo) Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	if f.enrollErr != nil {
		return f.enrollErr
	}
	f.enrollments = append(f.enrollments, *enrollment)
	return nil
}

func (f fakeEnrollmentRepo) Delete(ctx context.Context, exec sqlx.ExtContext, classID int64, studentCI string) error {
	for i, e := range f.enrollments {
		if e.ClassID == classID && e.StudentCI == studentCI {
			f.enrollments = append(f.enrollments[:i], f.enrollments[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

// lookups

type fakeLookups struct{ *fakeSchool }

func (f fakeLookups) Exists(ctx context.Context, exec sqlx.ExtContext, ci string) (bool, error) {
	_, ok := f.students[ci]
	return ok, nil
}

func (f fakeLookups) FindEquipment(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Equipment, error) {
	if e, ok := f.equipment[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (f fakeLookups) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Shift, error) {
	if s, ok := f.shifts[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (f fakeLookups) FindByCI(ctx context.Context, exec sqlx.ExtContext, ci string) (*models.Instructor, error) {
	if i, ok := f.instructors[ci]; ok {
		return &i, nil
	}
	return nil, sql.ErrNoRows
}

type recordingInvalidator struct {
	patterns []string
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, pattern string) error {
	r.patterns = append(r.patterns, pattern)
	return nil
}
