package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/snow-school-api/internal/dto"
	"github.com/noah-isme/snow-school-api/internal/models"
	"github.com/noah-isme/snow-school-api/internal/service"
	"github.com/noah-isme/snow-school-api/pkg/response"
)

// InstructorHandler exposes instructor endpoints.
type InstructorHandler struct {
	instructors *service.InstructorService
}

// NewInstructorHandler constructs InstructorHandler.
func NewInstructorHandler(instructors *service.InstructorService) *InstructorHandler {
	return &InstructorHandler{instructors: instructors}
}

// List godoc
// @Summary List instructors
// @Tags Instructores
// @Produce json
// @Param search query string false "Search by name or ci"
// @Success 200 {object} response.Envelope
// @Router /instructores/ [get]
func (h *InstructorHandler) List(c *gin.Context) {
	filter := models.InstructorFilter{Search: strings.TrimSpace(c.Query("search")), Page: pageFromQuery(c)}
	items, pagination, err := h.instructors.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get instructor
// @Tags Instructores
// @Produce json
// @Param ci path string true "Instructor ci"
// @Success 200 {object} response.Envelope
// @Router /instructores/{ci}/ [get]
func (h *InstructorHandler) Get(c *gin.Context) {
	instructor, err := h.instructors.Get(c.Request.Context(), c.Param("ci"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, instructor)
}

// Create godoc
// @Summary Create instructor
// @Tags Instructores
// @Accept json
// @Produce json
// @Param payload body dto.InstructorRequest true "Instructor payload"
// @Success 201 {object} response.Envelope
// @Router /instructores/ [post]
func (h *InstructorHandler) Create(c *gin.Context) {
	var req dto.InstructorRequest
	if !bindJSON(c, &req) {
		return
	}
	instructor, err := h.instructors.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, instructor)
}

// Update godoc
// @Summary Update instructor
// @Tags Instructores
// @Accept json
// @Produce json
// @Param ci path string true "Instructor ci"
// @Param payload body dto.UpdateInstructorRequest true "Instructor payload"
// @Success 200 {object} response.Envelope
// @Router /instructores/{ci}/ [put]
func (h *InstructorHandler) Update(c *gin.Context) {
	var req dto.UpdateInstructorRequest
	if !bindJSON(c, &req) {
		return
	}
	instructor, err := h.instructors.Update(c.Request.Context(), c.Param("ci"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, instructor)
}

// Delete godoc
// @Summary Delete instructor
// @Tags Instructores
// @Param ci path string true "Instructor ci"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /instructores/{ci}/ [delete]
func (h *InstructorHandler) Delete(c *gin.Context) {
	if err := h.instructors.Delete(c.Request.Context(), c.Param("ci")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
