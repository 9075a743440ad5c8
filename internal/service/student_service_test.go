package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/snow-school-api/internal/dto"
	"github.com/noah-isme/snow-school-api/internal/models"
	"github.com/noah-isme/snow-school-api/internal/repository"
	appErrors "github.com/noah-isme/snow-school-api/pkg/errors"
)

type mockStudentRepo struct {
	students   map[string]models.Student
	delivered  map[string]bool
	createErr  error
	lastFilter models.StudentFilter
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.lastFilter = filter
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByCI(ctx context.Context, exec sqlx.ExtContext, ci string) (*models.Student, error) {
	if s, ok := m.students[ci]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.students[student.CI] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.students[student.CI]; !ok {
		return sql.ErrNoRows
	}
	m.students[student.CI] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, ci string) error {
	if _, ok := m.students[ci]; !ok {
		return sql.ErrNoRows
	}
	if m.delivered[ci] {
		return repository.ErrDeliveredClasses
	}
	delete(m.students, ci)
	return nil
}

func newStudentServiceFixture(now time.Time) (*StudentService, *mockStudentRepo, *AuthService, *recordingInvalidator) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"12345678": {CI: "12345678", FirstName: "Ana", LastName: "Silva"},
	}}
	school := newFakeSchool()
	school.addClass("1", 1, 1, false)
	school.addEnrollment(1, "12345678")
	auth := NewAuthService(AuthConfig{Secret: "secret", Issuer: "snow-school", TokenTTL: time.Hour}, func() time.Time { return now })
	cache := &recordingInvalidator{}
	svc := NewStudentService(repo, fakeEnrollmentRepo{school}, auth, cache, validator.New(), zap.NewNop())
	return svc, repo, auth, cache
}

func validRegistration(ci string) dto.RegisterStudentRequest {
	birth, _ := models.ParseDate("2001-05-20")
	return dto.RegisterStudentRequest{
		CI:        ci,
		FirstName: " Bruno ",
		LastName:  "Díaz",
		BirthDate: birth,
		Email:     "Bruno@Example.com",
	}
}

func TestStudentServiceRegister(t *testing.T) {
	svc, repo, _, _ := newStudentServiceFixture(time.Now())

	student, err := svc.Register(context.Background(), validRegistration("87654321"))
	require.NoError(t, err)
	assert.Equal(t, "Bruno", student.FirstName)
	assert.Equal(t, "bruno@example.com", student.Email)
	assert.Contains(t, repo.students, "87654321")

	_, err = svc.Register(context.Background(), validRegistration("12345678"))
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestStudentServiceRegisterValidation(t *testing.T) {
	svc, _, _, _ := newStudentServiceFixture(time.Now())

	req := validRegistration("12ab")
	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req = validRegistration("99999999")
	req.BirthDate = models.Date{}
	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestStudentServiceRegisterRace(t *testing.T) {
	svc, repo, _, _ := newStudentServiceFixture(time.Now())
	repo.createErr = &pq.Error{Code: "23505", Constraint: "students_pkey"}

	_, err := svc.Register(context.Background(), validRegistration("99999999"))
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestStudentServiceLogin(t *testing.T) {
	now := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	svc, _, auth, _ := newStudentServiceFixture(now)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{CI: "12345678"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", resp.Name)
	assert.Equal(t, now.Add(time.Hour), resp.ExpiresAt)

	claims, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "12345678", claims.StudentCI)
	assert.Equal(t, models.RoleStudent, claims.Role)

	_, err = svc.Login(context.Background(), dto.LoginRequest{CI: "00000000"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Contains(t, err.Error(), "Usuario no encontrado")
}

func TestStudentServiceUpdateAndDelete(t *testing.T) {
	svc, repo, _, cache := newStudentServiceFixture(time.Now())
	birth, _ := models.ParseDate("2000-01-01")

	updated, err := svc.Update(context.Background(), "12345678", dto.UpdateStudentRequest{FirstName: "Ana María", LastName: "Silva", BirthDate: birth, Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", repo.students["12345678"].FirstName)
	assert.Equal(t, "12345678", updated.CI)

	_, err = svc.Update(context.Background(), "00000000", dto.UpdateStudentRequest{FirstName: "X", LastName: "Y", BirthDate: birth, Email: "x@example.com"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), "12345678"))
	assert.Equal(t, []string{reportCachePattern}, cache.patterns)
	assert.ErrorIs(t, svc.Delete(context.Background(), "12345678"), appErrors.ErrNotFound)
}

func TestStudentServiceDeleteKeepsDeliveredHistory(t *testing.T) {
	svc, repo, _, cache := newStudentServiceFixture(time.Now())
	repo.delivered = map[string]bool{"12345678": true}

	err := svc.Delete(context.Background(), "12345678")
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Contains(t, err.Error(), "clases dictadas")
	assert.Contains(t, repo.students, "12345678")
	assert.Empty(t, cache.patterns)
}

func TestStudentServiceMyEnrollments(t *testing.T) {
	svc, _, _, _ := newStudentServiceFixture(time.Now())

	items, pagination, err := svc.MyEnrollments(context.Background(), "12345678", models.Page{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ClassID)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 1, pagination.Page)
}
