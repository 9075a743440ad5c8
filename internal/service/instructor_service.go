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

type instructorRepository interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error)
	FindByCI(ctx context.Context, exec sqlx.ExtContext, ci string) (*models.Instructor, error)
	Create(ctx context.Context, instructor *models.Instructor) error
	Update(ctx context.Context, instructor *models.Instructor) error
	Delete(ctx context.Context, ci string) error
}

// InstructorService handles instructor CRUD.
type InstructorService struct {
	repo      instructorRepository
	cache     reportInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstructorService constructs an InstructorService.
func NewInstructorService(repo instructorRepository, cache reportInvalidator, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns instructors.
func (s *InstructorService) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list instructors")
	}
	return items, filter.Page.Pagination(total), nil
}

// Get returns one instructor.
func (s *InstructorService) Get(ctx context.Context, ci string) (*models.Instructor, error) {
	instructor, err := s.repo.FindByCI(ctx, nil, ci)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Instructor no encontrado")
		}
		return nil, appErrors.Internal(err, "failed to load instructor")
	}
	return instructor, nil
}

// Create registers an instructor.
func (s *InstructorService) Create(ctx context.Context, req dto.InstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	instructor := &models.Instructor{
		CI:        strings.TrimSpace(req.CI),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if err := s.repo.Create(ctx, instructor); err != nil {
		if _, dup := database.IsUniqueViolation(err); dup {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Instructor con esta CI ya existe")
		}
		return nil, appErrors.Internal(err, "failed to create instructor")
	}
	return instructor, nil
}

// Update renames an instructor.
func (s *InstructorService) Update(ctx context.Context, ci string, req dto.UpdateInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	instructor := &models.Instructor{CI: ci, FirstName: strings.TrimSpace(req.FirstName), LastName: strings.TrimSpace(req.LastName)}
	if err := s.repo.Update(ctx, instructor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Instructor no encontrado")
		}
		return nil, appErrors.Internal(err, "failed to update instructor")
	}
	return instructor, nil
}

// Delete removes an instructor who never delivered a class, together with
// their undelivered classes.
func (s *InstructorService) Delete(ctx context.Context, ci string) error {
	if err := s.repo.Delete(ctx, ci); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, "Instructor no encontrado")
		case errors.Is(err, repository.ErrDeliveredClasses):
			return appErrors.Clone(appErrors.ErrConflict, "El instructor tiene clases dictadas")
		}
		if _, fk := database.IsForeignKeyViolation(err); fk {
			return appErrors.Clone(appErrors.ErrConflict, "El instructor tiene clases asignadas")
		}
		return appErrors.Internal(err, "failed to delete instructor")
	}
	invalidateReports(ctx, s.cache)
	return nil
}
