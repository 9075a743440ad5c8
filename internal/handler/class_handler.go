package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/snow-school-api/internal/dto"
	"github.com/noah-isme/snow-school-api/internal/models"
	"github.com/noah-isme/snow-school-api/pkg/response"
)

type classService interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*dto.ClassResponse, error)
	ListStudents(ctx context.Context, id int64) ([]models.EnrollmentDetail, error)
	Create(ctx context.Context, req dto.CreateClassRequest) (*models.Class, error)
	Modify(ctx context.Context, id int64, req dto.ModifyClassRequest) (*dto.ClassResponse, error)
	MarkDelivered(ctx context.Context, id int64) (*dto.ClassResponse, error)
	Delete(ctx context.Context, id int64) error
}

// ClassHandler exposes class endpoints.
type ClassHandler struct {
	classes classService
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(classes classService) *ClassHandler {
	return &ClassHandler{classes: classes}
}

// List godoc
// @Summary List classes
// @Tags Clases
// @Produce json
// @Param ci_instructor query string false "Filter by instructor"
// @Param id_actividad query int false "Filter by activity"
// @Param id_turno query int false "Filter by shift"
// @Param dictada query bool false "Filter by delivered state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /clases/ [get]
func (h *ClassHandler) List(c *gin.Context) {
	filter := models.ClassFilter{
		InstructorCI: strings.TrimSpace(c.Query("ci_instructor")),
		ActivityID:   queryInt64(c, "id_actividad"),
		ShiftID:      queryInt64(c, "id_turno"),
		Page:         pageFromQuery(c),
	}
	if raw := c.Query("dictada"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.Delivered = &v
		}
	}
	classes, pagination, err := h.classes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, pagination)
}

// Get godoc
// @Summary Get class with roster
// @Tags Clases
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /clases/{id}/ [get]
func (h *ClassHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	class, err := h.classes.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, class)
}

// Students godoc
// @Summary Roster of a class
// @Tags Clases
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /clases/{id}/alumnos/ [get]
func (h *ClassHandler) Students(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	students, err := h.classes.ListStudents(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, students)
}

// Create godoc
// @Summary Create class
// @Tags Clases
// @Accept json
// @Produce json
// @Param payload body dto.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /clases/ [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req dto.CreateClassRequest
	if !bindJSON(c, &req) {
		return
	}
	class, err := h.classes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Modify godoc
// @Summary Modify class
// @Description Changes instructor or shift and adds or removes students. Rejected while the shift is in progress.
// @Tags Clases
// @Accept json
// @Produce json
// @Param id path int true "Class ID"
// @Param payload body dto.ModifyClassRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /clases/{id}/ [put]
func (h *ClassHandler) Modify(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ModifyClassRequest
	if !bindJSON(c, &req) {
		return
	}
	class, err := h.classes.Modify(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, class)
}

// MarkDelivered godoc
// @Summary Mark class as delivered
// @Tags Clases
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /clases/{id}/dictada/ [post]
func (h *ClassHandler) MarkDelivered(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	class, err := h.classes.MarkDelivered(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, class)
}

// Delete godoc
// @Summary Delete class
// @Tags Clases
// @Param id path int true "Class ID"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /clases/{id}/ [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.classes.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
