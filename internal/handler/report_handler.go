package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/snow-school-api/internal/dto"
	"github.com/noah-isme/snow-school-api/internal/models"
	"github.com/noah-isme/snow-school-api/internal/service"
	appErrors "github.com/noah-isme/snow-school-api/pkg/errors"
	"github.com/noah-isme/snow-school-api/pkg/export"
	"github.com/noah-isme/snow-school-api/pkg/response"
)

type reportService interface {
	ActivitiesByRevenue(ctx context.Context, refresh bool) ([]models.ActivityRevenue, error)
	ActivitiesByStudents(ctx context.Context, refresh bool) ([]models.ActivityStudents, error)
	ShiftsByClasses(ctx context.Context, refresh bool) ([]models.ShiftClasses, error)
}

type reportExporter interface {
	Export(ctx context.Context, kind service.ReportKind, format export.Format) (*service.ExportResult, error)
}

// ReportHandler exposes the aggregate reports as JSON, CSV or PDF.
type ReportHandler struct {
	reports   reportService
	exporter  reportExporter
	validator *validator.Validate
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports reportService, exporter reportExporter) *ReportHandler {
	return &ReportHandler{reports: reports, exporter: exporter, validator: validator.New()}
}

// ActivitiesByRevenue godoc
// @Summary Activities ranked by revenue
// @Tags Reportes
// @Produce json,text/csv,application/pdf
// @Param format query string false "json (default), csv or pdf"
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} response.Envelope
// @Router /reportes/actividades_mas_ingresos/ [get]
func (h *ReportHandler) ActivitiesByRevenue(c *gin.Context) {
	h.serve(c, service.ReportActivitiesByRevenue, func(ctx context.Context, refresh bool) (interface{}, error) {
		return h.reports.ActivitiesByRevenue(ctx, refresh)
	})
}

// ActivitiesByStudents godoc
// @Summary Activities ranked by enrollments
// @Tags Reportes
// @Produce json,text/csv,application/pdf
// @Param format query string false "json (default), csv or pdf"
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} response.Envelope
// @Router /reportes/actividades_mas_alumnos/ [get]
func (h *ReportHandler) ActivitiesByStudents(c *gin.Context) {
	h.serve(c, service.ReportActivitiesByStudents, func(ctx context.Context, refresh bool) (interface{}, error) {
		return h.reports.ActivitiesByStudents(ctx, refresh)
	})
}

// ShiftsByClasses godoc
// @Summary Shifts ranked by classes
// @Tags Reportes
// @Produce json,text/csv,application/pdf
// @Param format query string false "json (default), csv or pdf"
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} response.Envelope
// @Router /reportes/turnos_mas_clases/ [get]
func (h *ReportHandler) ShiftsByClasses(c *gin.Context) {
	h.serve(c, service.ReportShiftsByClasses, func(ctx context.Context, refresh bool) (interface{}, error) {
		return h.reports.ShiftsByClasses(ctx, refresh)
	})
}

func (h *ReportHandler) serve(c *gin.Context, kind service.ReportKind, load func(context.Context, bool) (interface{}, error)) {
	var query dto.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	if err := h.validator.Struct(query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be json, csv or pdf"))
		return
	}

	if query.Format == "" || query.Format == "json" {
		rows, err := load(c.Request.Context(), query.Refresh)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, rows)
		return
	}

	format, err := export.ParseFormat(query.Format)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()))
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), kind, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
