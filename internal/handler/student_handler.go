package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/snow-school-api/internal/dto"
	"github.com/noah-isme/snow-school-api/internal/middleware"
	"github.com/noah-isme/snow-school-api/internal/models"
	appErrors "github.com/noah-isme/snow-school-api/pkg/errors"
	"github.com/noah-isme/snow-school-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
	Get(ctx context.Context, ci string) (*models.Student, error)
	Register(ctx context.Context, req dto.RegisterStudentRequest) (*models.Student, error)
	Update(ctx context.Context, ci string, req dto.UpdateStudentRequest) (*models.Student, error)
	Delete(ctx context.Context, ci string) error
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	MyEnrollments(ctx context.Context, ci string, page models.Page) ([]models.EnrollmentDetail, *models.Pagination, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Tags Alumnos
// @Produce json
// @Param search query string false "Search by name or ci"
// @Param sort query string false "ci, nombre or apellido"
// @Param order query string false "asc or desc"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /alumnos/ [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.StudentFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
		Page:      pageFromQuery(c),
	}
	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student
// @Tags Alumnos
// @Produce json
// @Param ci path string true "Student ci"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /alumnos/{ci}/ [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("ci"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Register godoc
// @Summary Register student
// @Tags Alumnos
// @Accept json
// @Produce json
// @Param payload body dto.RegisterStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /alumnos/ [post]
func (h *StudentHandler) Register(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Alumnos
// @Accept json
// @Produce json
// @Param ci path string true "Student ci"
// @Param payload body dto.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /alumnos/{ci}/ [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("ci"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Delete godoc
// @Summary Delete student
// @Tags Alumnos
// @Param ci path string true "Student ci"
// @Success 204
// @Router /alumnos/{ci}/ [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("ci")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Login godoc
// @Summary Student login
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /login/ [post]
func (h *StudentHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.students.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resp)
}

// MyClasses godoc
// @Summary Enrollments of the authenticated student
// @Tags Alumnos
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me/clases/ [get]
func (h *StudentHandler) MyClasses(c *gin.Context) {
	claims, ok := middleware.CurrentStudent(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, pagination, err := h.students.MyEnrollments(c.Request.Context(), claims.StudentCI, pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}
