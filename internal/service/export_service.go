package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	appErrors "github.com/noah-isme/snow-school-api/pkg/errors"
	"github.com/noah-isme/snow-school-api/pkg/export"
)

// ExportResult is a rendered report file.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders reports as CSV or PDF.
type ExportService struct {
	reports *ReportService
	now     Clock
}

// NewExportService constructs an ExportService.
func NewExportService(reports *ReportService, now Clock) *ExportService {
	if now == nil {
		now = time.Now
	}
	return &ExportService{reports: reports, now: now}
}

// Export renders the report kind in format.
func (s *ExportService) Export(ctx context.Context, kind ReportKind, format export.Format) (*ExportResult, error) {
	dataset, err := s.dataset(ctx, kind)
	if err != nil {
		return nil, err
	}
	body, err := export.RendererFor(format).Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render report")
	}
	filename := fmt.Sprintf("%s_%s.%s", kind, s.now().Format("20060102"), format)
	return &ExportResult{Filename: filename, ContentType: format.ContentType(), Body: body}, nil
}

func (s *ExportService) dataset(ctx context.Context, kind ReportKind) (export.Dataset, error) {
	switch kind {
	case ReportActivitiesByRevenue:
		rows, err := s.reports.ActivitiesByRevenue(ctx, false)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{Title: "Actividades con más ingresos", Headers: []string{"id_actividad", "descripcion", "ingresos"}}
		for _, r := range rows {
			data.Rows = append(data.Rows, map[string]string{
				"id_actividad": strconv.FormatInt(r.ActivityID, 10),
				"descripcion":  r.Description,
				"ingresos":     strconv.FormatFloat(r.Revenue, 'f', 2, 64),
			})
		}
		return data, nil
	case ReportActivitiesByStudents:
		rows, err := s.reports.ActivitiesByStudents(ctx, false)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{Title: "Actividades con más alumnos", Headers: []string{"id_actividad", "descripcion", "cantidad_alumnos"}}
		for _, r := range rows {
			data.Rows = append(data.Rows, map[string]string{
				"id_actividad":     strconv.FormatInt(r.ActivityID, 10),
				"descripcion":      r.Description,
				"cantidad_alumnos": strconv.Itoa(r.Students),
			})
		}
		return data, nil
	case ReportShiftsByClasses:
		rows, err := s.reports.ShiftsByClasses(ctx, false)
		if err != nil {
			return export.Dataset{}, err
		}
		data := export.Dataset{Title: "Turnos con más clases", Headers: []string{"id_turno", "hora_inicio", "hora_fin", "cantidad_clases"}}
		for _, r := range rows {
			data.Rows = append(data.Rows, map[string]string{
				"id_turno":        strconv.FormatInt(r.ShiftID, 10),
				"hora_inicio":     r.StartTime.String(),
				"hora_fin":        r.EndTime.String(),
				"cantidad_clases": strconv.Itoa(r.Classes),
			})
		}
		return data, nil
	default:
		return export.Dataset{}, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
}
