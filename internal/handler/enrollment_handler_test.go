package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/snow-school-api/internal/dto"
	"github.com/noah-isme/snow-school-api/internal/models"
	appErrors "github.com/noah-isme/snow-school-api/pkg/errors"
)

type enrollmentServiceMock struct {
	lastEnroll dto.EnrollRequest
	lastFilter models.EnrollmentFilter
	enrollResp *dto.EnrollResponse
	err        error
	unenrolled []string
}

func (m *enrollmentServiceMock) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	m.lastFilter = filter
	return []models.EnrollmentDetail{}, filter.Page.Pagination(0), m.err
}

func (m *enrollmentServiceMock) Enroll(ctx context.Context, req dto.EnrollRequest) (*dto.EnrollResponse, error) {
	m.lastEnroll = req
	return m.enrollResp, m.err
}

func (m *enrollmentServiceMock) EnrollIntoClass(ctx context.Context, req dto.ClassEnrollmentRequest) (*dto.EnrollResponse, error) {
	return m.enrollResp, m.err
}

func (m *enrollmentServiceMock) Unenroll(ctx context.Context, classID int64, studentCI string) error {
	m.unenrolled = append(m.unenrolled, studentCI)
	return m.err
}

func TestEnrollmentHandlerEnroll(t *testing.T) {
	svc := &enrollmentServiceMock{enrollResp: &dto.EnrollResponse{ClassID: 1, ClassCreated: true, Enrolled: []string{"12345678"}}}
	h := NewEnrollmentHandler(svc)

	body := []byte(`{"ci_instructor":"1","id_actividad":1,"id_turno":1,"alumnos":[{"ci_alumno":"12345678","id_equipamiento":10}]}`)
	c, w := newGinContext(http.MethodPost, "/inscripciones/", body)
	h.Enroll(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, svc.lastEnroll.Students, 1)
	assert.Equal(t, int64(10), *svc.lastEnroll.Students[0].EquipmentID)
	assert.JSONEq(t, `{"id_clase":1,"clase_creada":true,"inscriptos":["12345678"]}`, string(decode(t, w).Data))
}

func TestEnrollmentHandlerErrors(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		err     error
		status  int
		code    string
		message string
	}{
		{name: "malformed json", body: `{"id_actividad":`, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "conflict", body: `{}`, err: appErrors.Clone(appErrors.ErrConflict, "El instructor ya tiene una clase en este turno"), status: http.StatusBadRequest, code: "CONFLICT", message: "El instructor ya tiene una clase en este turno"},
		{name: "unexpected", body: `{}`, err: appErrors.Internal(errors.New("connection reset"), "failed to create enrollment"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR", message: "failed to create enrollment"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewEnrollmentHandler(&enrollmentServiceMock{err: tc.err})
			c, w := newGinContext(http.MethodPost, "/inscripciones/", []byte(tc.body))
			h.Enroll(c)

			require.Equal(t, tc.status, w.Code)
			env := decode(t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.code, env.Error.Code)
			if tc.message != "" {
				assert.Equal(t, tc.message, env.Error.Message)
			}
			assert.NotContains(t, w.Body.String(), "connection reset")
		})
	}
}

func TestEnrollmentHandlerListAndUnenroll(t *testing.T) {
	svc := &enrollmentServiceMock{}
	h := NewEnrollmentHandler(svc)

	c, w := newGinContext(http.MethodGet, "/inscripciones/?ci_alumno=12345678&id_clase=3&page=2", nil)
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345678", svc.lastFilter.StudentCI)
	assert.Equal(t, int64(3), svc.lastFilter.ClassID)
	assert.Equal(t, 2, svc.lastFilter.Page.Page)

	c, w = newGinContext(http.MethodDelete, "/inscripciones/x/12345678/", nil)
	c.Params = gin.Params{{Key: "classId", Value: "x"}, {Key: "ci", Value: "12345678"}}
	h.Unenroll(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.unenrolled)

	c, w = newGinContext(http.MethodDelete, "/inscripciones/3/12345678/", nil)
	c.Params = gin.Params{{Key: "classId", Value: "3"}, {Key: "ci", Value: "12345678"}}
	h.Unenroll(c)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"12345678"}, svc.unenrolled)
}

func TestEnrollmentHandlerEnrollIntoClassNotFound(t *testing.T) {
	h := NewEnrollmentHandler(&enrollmentServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "Clase no encontrada")})
	c, w := newGinContext(http.MethodPost, "/alumno_clase/", []byte(`{"id_clase":9,"ci_alumno":"12345678"}`))
	h.EnrollIntoClass(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
