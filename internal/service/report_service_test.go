package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/snow-school-api/internal/models"
	appErrors "github.com/noah-isme/snow-school-api/pkg/errors"
	"github.com/noah-isme/snow-school-api/pkg/export"
)

type memoryCacheRepo struct {
	items   map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	deleted []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
			m.deleted = append(m.deleted, key)
		}
	}
	return nil
}

type stubReportRepo struct {
	calls    int
	revenue  []models.ActivityRevenue
	students []models.ActivityStudents
	shifts   []models.ShiftClasses
	err      error
}

func (s *stubReportRepo) ActivitiesByRevenue(ctx context.Context) ([]models.ActivityRevenue, error) {
	s.calls++
	return s.revenue, s.err
}

func (s *stubReportRepo) ActivitiesByStudents(ctx context.Context) ([]models.ActivityStudents, error) {
	s.calls++
	return s.students, s.err
}

func (s *stubReportRepo) ShiftsByClasses(ctx context.Context) ([]models.ShiftClasses, error) {
	s.calls++
	return s.shifts, s.err
}

func newReportFixture() (*ReportService, *stubReportRepo, *memoryCacheRepo, *MetricsService) {
	repo := &stubReportRepo{
		revenue: []models.ActivityRevenue{
			{ActivityID: 1, Description: "Ski", Revenue: 230},
			{ActivityID: 2, Description: "Snowboard", Revenue: 120},
		},
		students: []models.ActivityStudents{{ActivityID: 1, Description: "Ski", Students: 2}},
		shifts:   []models.ShiftClasses{{ShiftID: 1, StartTime: 9 * 3600, EndTime: 11 * 3600, Classes: 3}},
	}
	store := newMemoryCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(store, metrics, time.Minute, zap.NewNop(), true)
	return NewReportService(repo, cache, metrics, 0, zap.NewNop()), repo, store, metrics
}

func TestReportServiceCachesResults(t *testing.T) {
	svc, repo, store, metrics := newReportFixture()
	ctx := context.Background()

	first, err := svc.ActivitiesByRevenue(ctx, false)
	require.NoError(t, err)
	second, err := svc.ActivitiesByRevenue(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, time.Minute, store.ttls["reports:actividades_mas_ingresos"])
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheMisses))

	_, err = svc.ActivitiesByRevenue(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestReportServiceInvalidation(t *testing.T) {
	svc, repo, store, metrics := newReportFixture()
	ctx := context.Background()
	cache := NewCacheService(store, metrics, time.Minute, zap.NewNop(), true)

	_, err := svc.ShiftsByClasses(ctx, false)
	require.NoError(t, err)
	_, err = svc.ActivitiesByStudents(ctx, false)
	require.NoError(t, err)
	require.Len(t, store.items, 2)

	invalidateReports(ctx, cache)
	assert.Empty(t, store.items)

	rows, err := svc.ShiftsByClasses(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls)
	assert.Equal(t, "09:00:00", rows[0].StartTime.String())
}

func TestReportServiceBackendFailures(t *testing.T) {
	svc, repo, store, _ := newReportFixture()
	store.getErr = errors.New("redis down")

	rows, err := svc.ActivitiesByStudents(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	repo.err = errors.New("db down")
	_, err = svc.ActivitiesByStudents(context.Background(), true)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestReportServiceWithoutCache(t *testing.T) {
	repo := &stubReportRepo{}
	svc := NewReportService(repo, NewCacheService(nil, nil, 0, nil, false), nil, 0, nil)

	_, err := svc.ActivitiesByRevenue(context.Background(), false)
	require.NoError(t, err)
	_, err = svc.ActivitiesByRevenue(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestExportServiceCSV(t *testing.T) {
	reports, _, _, _ := newReportFixture()
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	svc := NewExportService(reports, func() time.Time { return now })

	result, err := svc.Export(context.Background(), ReportActivitiesByRevenue, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "actividades_mas_ingresos_20260701.csv", result.Filename)
	assert.Equal(t, export.FormatCSV.ContentType(), result.ContentType)

	body := strings.TrimPrefix(string(result.Body), "\ufeff")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id_actividad,descripcion,ingresos", lines[0])
	assert.Equal(t, "1,Ski,230.00", lines[1])
}

func TestExportServicePDF(t *testing.T) {
	reports, _, _, _ := newReportFixture()
	svc := NewExportService(reports, nil)

	result, err := svc.Export(context.Background(), ReportShiftsByClasses, export.FormatPDF)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(result.Body), "%PDF"))
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))

	_, err = svc.Export(context.Background(), ReportKind("desconocido"), export.FormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
