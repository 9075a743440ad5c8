package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/snow-school-api/internal/dto"
	"github.com/noah-isme/snow-school-api/internal/models"
	"github.com/noah-isme/snow-school-api/internal/repository"
	"github.com/noah-isme/snow-school-api/pkg/database"
	appErrors "github.com/noah-isme/snow-school-api/pkg/errors"
)

type activityRepository interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id int64) error
	ListEquipment(ctx context.Context, activityID int64) ([]models.Equipment, error)
	FindEquipment(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Equipment, error)
	CreateEquipment(ctx context.Context, item *models.Equipment) error
	UpdateEquipment(ctx context.Context, item *models.Equipment) error
	DeleteEquipment(ctx context.Context, id int64) error
}

// ActivityService manages activities and their rentable equipment.
type ActivityService struct {
	repo      activityRepository
	cache     reportInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(repo activityRepository, cache reportInvalidator, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns activities.
func (s *ActivityService) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list activities")
	}
	return items, filter.Page.Pagination(total), nil
}

// Get returns an activity with its equipment.
func (s *ActivityService) Get(ctx context.Context, id int64) (*models.ActivityDetail, error) {
	activity, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	equipment, err := s.repo.ListEquipment(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load equipment")
	}
	if equipment == nil {
		equipment = []models.Equipment{}
	}
	return &models.ActivityDetail{Activity: *activity, Equipment: equipment}, nil
}

// Create adds an activity.
func (s *ActivityService) Create(ctx context.Context, req dto.ActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	activity := &models.Activity{Description: strings.TrimSpace(req.Description), Cost: *req.Cost}
	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, appErrors.Internal(err, "failed to create activity")
	}
	return activity, nil
}

// Update changes an activity's description and cost.
func (s *ActivityService) Update(ctx context.Context, id int64, req dto.ActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	activity := &models.Activity{ID: id, Description: strings.TrimSpace(req.Description), Cost: *req.Cost}
	if err := s.repo.Update(ctx, activity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Actividad no encontrada")
		}
		return nil, appErrors.Internal(err, "failed to update activity")
	}
	invalidateReports(ctx, s.cache)
	return activity, nil
}

// Delete removes an activity with its equipment and undelivered classes.
// Delivered classes keep the activity alive.
func (s *ActivityService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, "Actividad no encontrada")
		case errors.Is(err, repository.ErrDeliveredClasses):
			return appErrors.Clone(appErrors.ErrConflict, "La actividad tiene clases dictadas")
		}
		if _, fk := database.IsForeignKeyViolation(err); fk {
			return appErrors.Clone(appErrors.ErrConflict, "La actividad tiene clases asignadas")
		}
		return appErrors.Internal(err, "failed to delete activity")
	}
	invalidateReports(ctx, s.cache)
	return nil
}

// ListEquipment returns the equipment of an activity.
func (s *ActivityService) ListEquipment(ctx context.Context, activityID int64) ([]models.Equipment, error) {
	if _, err := s.find(ctx, activityID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListEquipment(ctx, activityID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list equipment")
	}
	return items, nil
}

// CreateEquipment adds rentable equipment to an activity.
func (s *ActivityService) CreateEquipment(ctx context.Context, activityID int64, req dto.EquipmentRequest) (*models.Equipment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid equipment payload")
	}
	if _, err := s.find(ctx, activityID); err != nil {
		return nil, err
	}
	item := &models.Equipment{ActivityID: activityID, Description: strings.TrimSpace(req.Description), Cost: *req.Cost}
	if err := s.repo.CreateEquipment(ctx, item); err != nil {
		return nil, appErrors.Internal(err, "failed to create equipment")
	}
	return item, nil
}

// UpdateEquipment changes equipment description and cost.
func (s *ActivityService) UpdateEquipment(ctx context.Context, id int64, req dto.EquipmentRequest) (*models.Equipment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid equipment payload")
	}
	item, err := s.repo.FindEquipment(ctx, nil, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Equipamiento no encontrado")
		}
		return nil, appErrors.Internal(err, "failed to load equipment")
	}
	item.Description = strings.TrimSpace(req.Description)
	item.Cost = *req.Cost
	if err := s.repo.UpdateEquipment(ctx, item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Equipamiento no encontrado")
		}
		return nil, appErrors.Internal(err, "failed to update equipment")
	}
	invalidateReports(ctx, s.cache)
	return item, nil
}

// DeleteEquipment removes equipment. Enrollments that rented it keep their seat.
func (s *ActivityService) DeleteEquipment(ctx context.Context, id int64) error {
	if err := s.repo.DeleteEquipment(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Equipamiento no encontrado")
		}
		return appErrors.Internal(err, "failed to delete equipment")
	}
	invalidateReports(ctx, s.cache)
	return nil
}

func (s *ActivityService) find(ctx context.Context, id int64) (*models.Activity, error) {
	activity, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Actividad no encontrada")
		}
		return nil, appErrors.Internal(err, "failed to load activity")
	}
	return activity, nil
}
