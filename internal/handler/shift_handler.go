package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/snow-school-api/internal/dto"
	"github.com/noah-isme/snow-school-api/internal/models"
	"github.com/noah-isme/snow-school-api/internal/service"
	"github.com/noah-isme/snow-school-api/pkg/response"
)

// ShiftHandler exposes shift endpoints.
type ShiftHandler struct {
	shifts *service.ShiftService
}

// NewShiftHandler constructs ShiftHandler.
func NewShiftHandler(shifts *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shifts: shifts}
}

// List godoc
// @Summary List shifts
// @Tags Turnos
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /turnos/ [get]
func (h *ShiftHandler) List(c *gin.Context) {
	items, pagination, err := h.shifts.List(c.Request.Context(), models.ShiftFilter{Page: pageFromQuery(c)})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get shift
// @Tags Turnos
// @Produce json
// @Param id path int true "Shift ID"
// @Success 200 {object} response.Envelope
// @Router /turnos/{id}/ [get]
func (h *ShiftHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	shift, err := h.shifts.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, shift)
}

// Create godoc
// @Summary Create shift
// @Tags Turnos
// @Accept json
// @Produce json
// @Param payload body dto.ShiftRequest true "Shift payload"
// @Success 201 {object} response.Envelope
// @Router /turnos/ [post]
func (h *ShiftHandler) Create(c *gin.Context) {
	var req dto.ShiftRequest
	if !bindJSON(c, &req) {
		return
	}
	shift, err := h.shifts.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, shift)
}

// Update godoc
// @Summary Update shift
// @Tags Turnos
// @Accept json
// @Produce json
// @Param id path int true "Shift ID"
// @Param payload body dto.ShiftRequest true "Shift payload"
// @Success 200 {object} response.Envelope
// @Router /turnos/{id}/ [put]
func (h *ShiftHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ShiftRequest
	if !bindJSON(c, &req) {
		return
	}
	shift, err := h.shifts.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, shift)
}

// Delete godoc
// @Summary Delete shift
// @Tags Turnos
// @Param id path int true "Shift ID"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /turnos/{id}/ [delete]
func (h *ShiftHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.shifts.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
