package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/snow-school-api/internal/models"
	appErrors "github.com/noah-isme/snow-school-api/pkg/errors"
)

// ReportKind names one of the aggregate reports.
type ReportKind string

const (
	ReportActivitiesByRevenue  ReportKind = "actividades_mas_ingresos"
	ReportActivitiesByStudents ReportKind = "actividades_mas_alumnos"
	ReportShiftsByClasses      ReportKind = "turnos_mas_clases"
)

type reportRepository interface {
	ActivitiesByRevenue(ctx context.Context) ([]models.ActivityRevenue, error)
	ActivitiesByStudents(ctx context.Context) ([]models.ActivityStudents, error)
	ShiftsByClasses(ctx context.Context) ([]models.ShiftClasses, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

// ReportService serves the aggregate reports through the Redis cache.
type ReportService struct {
	repo    reportRepository
	cache   reportCache
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewReportService constructs a ReportService. ttl <= 0 defers to the cache default.
func NewReportService(repo reportRepository, cache reportCache, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

func cacheKey(kind ReportKind) string {
	return "reports:" + string(kind)
}

// ActivitiesByRevenue ranks activities by the money their enrollments bring in.
func (s *ReportService) ActivitiesByRevenue(ctx context.Context, refresh bool) ([]models.ActivityRevenue, error) {
	var rows []models.ActivityRevenue
	err := s.load(ctx, ReportActivitiesByRevenue, refresh, &rows, func() error {
		var err error
		rows, err = s.repo.ActivitiesByRevenue(ctx)
		return err
	})
	return rows, err
}

// ActivitiesByStudents ranks activities by number of enrollments.
func (s *ReportService) ActivitiesByStudents(ctx context.Context, refresh bool) ([]models.ActivityStudents, error) {
	var rows []models.ActivityStudents
	err := s.load(ctx, ReportActivitiesByStudents, refresh, &rows, func() error {
		var err error
		rows, err = s.repo.ActivitiesByStudents(ctx)
		return err
	})
	return rows, err
}

// ShiftsByClasses ranks shifts by number of classes.
func (s *ReportService) ShiftsByClasses(ctx context.Context, refresh bool) ([]models.ShiftClasses, error) {
	var rows []models.ShiftClasses
	err := s.load(ctx, ReportShiftsByClasses, refresh, &rows, func() error {
		var err error
		rows, err = s.repo.ShiftsByClasses(ctx)
		return err
	})
	return rows, err
}

// load serves dest from cache unless refresh is set, otherwise runs query and caches its result.
func (s *ReportService) load(ctx context.Context, kind ReportKind, refresh bool, dest interface{}, query func() error) error {
	key := cacheKey(kind)
	if !refresh && s.cache != nil && s.cache.Get(ctx, key, dest) {
		return nil
	}
	start := time.Now()
	err := query()
	s.metrics.ObserveDBQuery(string(kind), time.Since(start))
	if err != nil {
		return appErrors.Internal(err, "failed to build report")
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, dest, s.ttl)
	}
	return nil
}
