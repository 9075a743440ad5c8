package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/snow-school-api/internal/dto"
	"github.com/noah-isme/snow-school-api/internal/models"
	appErrors "github.com/noah-isme/snow-school-api/pkg/errors"
)

type classServiceMock struct {
	lastFilter models.ClassFilter
	lastModify dto.ModifyClassRequest
	err        error
}

func (m *classServiceMock) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, *models.Pagination, error) {
	m.lastFilter = filter
	return []models.ClassDetail{}, filter.Page.Pagination(0), m.err
}

func (m *classServiceMock) Get(ctx context.Context, id int64) (*dto.ClassResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ClassResponse{ClassDetail: models.ClassDetail{Class: models.Class{ID: id}}}, nil
}

func (m *classServiceMock) ListStudents(ctx context.Context, id int64) ([]models.EnrollmentDetail, error) {
	return []models.EnrollmentDetail{}, m.err
}

func (m *classServiceMock) Create(ctx context.Context, req dto.CreateClassRequest) (*models.Class, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Class{ID: 1, InstructorCI: req.InstructorCI, ActivityID: req.ActivityID, ShiftID: req.ShiftID}, nil
}

func (m *classServiceMock) Modify(ctx context.Context, id int64, req dto.ModifyClassRequest) (*dto.ClassResponse, error) {
	m.lastModify = req
	if m.err != nil {
		return nil, m.err
	}
	return m.Get(ctx, id)
}

func (m *classServiceMock) MarkDelivered(ctx context.Context, id int64) (*dto.ClassResponse, error) {
	return m.Get(ctx, id)
}

func (m *classServiceMock) Delete(ctx context.Context, id int64) error {
	return m.err
}

func TestClassHandlerListFilters(t *testing.T) {
	svc := &classServiceMock{}
	h := NewClassHandler(svc)

	c, w := newGinContext(http.MethodGet, "/clases/?ci_instructor=1&id_actividad=2&id_turno=3&dictada=false", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", svc.lastFilter.InstructorCI)
	assert.Equal(t, int64(2), svc.lastFilter.ActivityID)
	assert.Equal(t, int64(3), svc.lastFilter.ShiftID)
	require.NotNil(t, svc.lastFilter.Delivered)
	assert.False(t, *svc.lastFilter.Delivered)
}

func TestClassHandlerModify(t *testing.T) {
	svc := &classServiceMock{}
	h := NewClassHandler(svc)

	c, w := newGinContext(http.MethodPut, "/clases/4/", []byte(`{"id_turno":2,"agregar_alumnos":[{"ci_alumno":"11111111"}],"quitar_alumnos":["12345678"]}`))
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	h.Modify(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastModify.ShiftID)
	assert.Equal(t, int64(2), *svc.lastModify.ShiftID)
	assert.Nil(t, svc.lastModify.InstructorCI)
	assert.Equal(t, []string{"12345678"}, svc.lastModify.RemoveStudents)
}

func TestClassHandlerErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		call   func(h *ClassHandler, c *gin.Context)
		status int
	}{
		{name: "modify missing class", err: appErrors.Clone(appErrors.ErrNotFound, "Clase no encontrada"), call: (*ClassHandler).Modify, status: http.StatusNotFound},
		{name: "modify during shift", err: appErrors.Clone(appErrors.ErrShiftInProgress, ""), call: (*ClassHandler).Modify, status: http.StatusBadRequest},
		{name: "delete delivered", err: appErrors.Clone(appErrors.ErrClassDelivered, "No se puede eliminar una clase dictada"), call: (*ClassHandler).Delete, status: http.StatusBadRequest},
		{name: "create busy instructor", err: appErrors.Clone(appErrors.ErrConflict, ""), call: (*ClassHandler).Create, status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewClassHandler(&classServiceMock{err: tc.err})
			c, w := newGinContext(http.MethodPost, "/clases/1/", []byte(`{"ci_instructor":"1","id_actividad":1,"id_turno":1}`))
			c.Params = gin.Params{{Key: "id", Value: "1"}}
			tc.call(h, c)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestClassHandlerRejectsBadID(t *testing.T) {
	h := NewClassHandler(&classServiceMock{})
	c, w := newGinContext(http.MethodGet, "/clases/abc/", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	h.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassHandlerDelete(t *testing.T) {
	h := NewClassHandler(&classServiceMock{})
	c, w := newGinContext(http.MethodDelete, "/clases/1/", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	h.Delete(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
