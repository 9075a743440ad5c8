package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/snow-school-api/internal/dto"
	"github.com/noah-isme/snow-school-api/internal/models"
	"github.com/noah-isme/snow-school-api/pkg/response"
)

type enrollmentService interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error)
	Enroll(ctx context.Context, req dto.EnrollRequest) (*dto.EnrollResponse, error)
	EnrollIntoClass(ctx context.Context, req dto.ClassEnrollmentRequest) (*dto.EnrollResponse, error)
	Unenroll(ctx context.Context, classID int64, studentCI string) error
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments
// @Tags Inscripciones
// @Produce json
// @Param ci_alumno query string false "Filter by student"
// @Param id_clase query int false "Filter by class"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /inscripciones/ [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	filter := models.EnrollmentFilter{
		StudentCI: strings.TrimSpace(c.Query("ci_alumno")),
		ClassID:   queryInt64(c, "id_clase"),
		Page:      pageFromQuery(c),
	}
	enrollments, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, pagination)
}

// Enroll godoc
// @Summary Enroll one or more students
// @Description Finds or creates the class for (instructor, activity, shift) and enrolls the
// @Description students atomically. Either ci_alumno or alumnos must be sent.
// @Tags Inscripciones
// @Accept json
// @Produce json
// @Param payload body dto.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /inscripciones/ [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// EnrollIntoClass godoc
// @Summary Enroll a student into an existing class
// @Tags Inscripciones
// @Accept json
// @Produce json
// @Param payload body dto.ClassEnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /alumno_clase/ [post]
func (h *EnrollmentHandler) EnrollIntoClass(c *gin.Context) {
	var req dto.ClassEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.enrollments.EnrollIntoClass(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Unenroll godoc
// @Summary Remove a student from a class
// @Tags Inscripciones
// @Param classId path int true "Class ID"
// @Param ci path string true "Student ci"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /inscripciones/{classId}/{ci}/ [delete]
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	classID, ok := pathID(c, "classId")
	if !ok {
		return
	}
	if err := h.enrollments.Unenroll(c.Request.Context(), classID, c.Param("ci")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
