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

// ActivityHandler exposes activity and equipment endpoints.
type ActivityHandler struct {
	activities *service.ActivityService
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(activities *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// List godoc
// @Summary List activities
// @Tags Actividades
// @Produce json
// @Param search query string false "Search by description"
// @Success 200 {object} response.Envelope
// @Router /actividades/ [get]
func (h *ActivityHandler) List(c *gin.Context) {
	filter := models.ActivityFilter{Search: strings.TrimSpace(c.Query("search")), Page: pageFromQuery(c)}
	items, pagination, err := h.activities.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get activity with its equipment
// @Tags Actividades
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /actividades/{id}/ [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	activity, err := h.activities.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, activity)
}

// Create godoc
// @Summary Create activity
// @Tags Actividades
// @Accept json
// @Produce json
// @Param payload body dto.ActivityRequest true "Activity payload"
// @Success 201 {object} response.Envelope
// @Router /actividades/ [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	var req dto.ActivityRequest
	if !bindJSON(c, &req) {
		return
	}
	activity, err := h.activities.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// Update godoc
// @Summary Update activity
// @Tags Actividades
// @Accept json
// @Produce json
// @Param id path int true "Activity ID"
// @Param payload body dto.ActivityRequest true "Activity payload"
// @Success 200 {object} response.Envelope
// @Router /actividades/{id}/ [put]
func (h *ActivityHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ActivityRequest
	if !bindJSON(c, &req) {
		return
	}
	activity, err := h.activities.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, activity)
}

// Delete godoc
// @Summary Delete activity
// @Tags Actividades
// @Param id path int true "Activity ID"
// @Success 204
// @Router /actividades/{id}/ [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.activities.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListEquipment godoc
// @Summary List equipment of an activity
// @Tags Equipamiento
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /actividades/{id}/equipamiento/ [get]
func (h *ActivityHandler) ListEquipment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.activities.ListEquipment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// CreateEquipment godoc
// @Summary Add equipment to an activity
// @Tags Equipamiento
// @Accept json
// @Produce json
// @Param id path int true "Activity ID"
// @Param payload body dto.EquipmentRequest true "Equipment payload"
// @Success 201 {object} response.Envelope
// @Router /actividades/{id}/equipamiento/ [post]
func (h *ActivityHandler) CreateEquipment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.EquipmentRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.activities.CreateEquipment(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateEquipment godoc
// @Summary Update equipment
// @Tags Equipamiento
// @Accept json
// @Produce json
// @Param id path int true "Equipment ID"
// @Param payload body dto.EquipmentRequest true "Equipment payload"
// @Success 200 {object} response.Envelope
// @Router /equipamiento/{id}/ [put]
func (h *ActivityHandler) UpdateEquipment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.EquipmentRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.activities.UpdateEquipment(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// DeleteEquipment godoc
// @Summary Delete equipment
// @Tags Equipamiento
// @Param id path int true "Equipment ID"
// @Success 204
// @Router /equipamiento/{id}/ [delete]
func (h *ActivityHandler) DeleteEquipment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.activities.DeleteEquipment(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
