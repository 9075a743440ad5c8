package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/snow-school-api/internal/dto"
	"github.com/noah-isme/snow-school-api/internal/models"
	"github.com/noah-isme/snow-school-api/pkg/database"
	appErrors "github.com/noah-isme/snow-school-api/pkg/errors"
)

type shiftRepository interface {
	List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, int, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Shift, error)
	Create(ctx context.Context, shift *models.Shift) error
	Update(ctx context.Context, shift *models.Shift) error
	Delete(ctx context.Context, id int64) error
	CountClasses(ctx context.Context, id int64) (int, error)
}

// ShiftService manages the school's time windows.
type ShiftService struct {
	repo      shiftRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewShiftService constructs a ShiftService.
func NewShiftService(repo shiftRepository, validate *validator.Validate, logger *zap.Logger) *ShiftService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftService{repo: repo, validator: validate, logger: logger}
}

// List returns shifts ordered by start time.
func (s *ShiftService) List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list shifts")
	}
	return items, filter.Page.Pagination(total), nil
}

// Get returns a shift.
func (s *ShiftService) Get(ctx context.Context, id int64) (*models.Shift, error) {
	shift, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Turno no encontrado")
		}
		return nil, appErrors.Internal(err, "failed to load shift")
	}
	return shift, nil
}

// Create adds a shift.
func (s *ShiftService) Create(ctx context.Context, req dto.ShiftRequest) (*models.Shift, error) {
	shift, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, shift); err != nil {
		return nil, appErrors.Internal(err, "failed to create shift")
	}
	return shift, nil
}

// Update changes a shift window.
func (s *ShiftService) Update(ctx context.Context, id int64, req dto.ShiftRequest) (*models.Shift, error) {
	shift, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	shift.ID = id
	if err := s.repo.Update(ctx, shift); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Turno no encontrado")
		}
		return nil, appErrors.Internal(err, "failed to update shift")
	}
	return shift, nil
}

// Delete removes a shift that no class uses.
func (s *ShiftService) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.CountClasses(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to check shift classes")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "El turno tiene clases asignadas")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Turno no encontrado")
		}
		if _, fk := database.IsForeignKeyViolation(err); fk {
			return appErrors.Clone(appErrors.ErrConflict, "El turno tiene clases asignadas")
		}
		return appErrors.Internal(err, "failed to delete shift")
	}
	return nil
}

func (s *ShiftService) parse(req dto.ShiftRequest) (*models.Shift, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}
	start, err := models.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "hora_inicio must be HH:MM")
	}
	end, err := models.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "hora_fin must be HH:MM")
	}
	if start == end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hora_inicio and hora_fin must differ")
	}
	return &models.Shift{StartTime: start, EndTime: end}, nil
}
