package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/snow-school-api/internal/dto"
	"github.com/noah-isme/snow-school-api/internal/models"
	"github.com/noah-isme/snow-school-api/internal/repository"
	"github.com/noah-isme/snow-school-api/pkg/database"
	appErrors "github.com/noah-isme/snow-school-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByCI(ctx context.Context, exec sqlx.ExtContext, ci string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, ci string) error
}

type studentEnrollmentLister interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
}

type tokenIssuer interface {
	IssueStudentToken(student *models.Student) (string, time.Time, error)
}

// StudentService manages student registration, profile and login.
type StudentService struct {
	repo        studentRepository
	enrollments studentEnrollmentLister
	tokens      tokenIssuer
	cache       reportInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, enrollments studentEnrollmentLister, tokens tokenIssuer, cache reportInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, enrollments: enrollments, tokens: tokens, cache: cache, validator: validate, logger: logger}
}

// List returns students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list students")
	}
	return students, filter.Page.Pagination(total), nil
}

// Get returns a student by ci.
func (s *StudentService) Get(ctx context.Context, ci string) (*models.Student, error) {
	student, err := s.repo.FindByCI(ctx, nil, ci)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Alumno no encontrado")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

// Register creates a new student. A repeated ci is a conflict.
func (s *StudentService) Register(ctx context.Context, req dto.RegisterStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if req.BirthDate.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fecha_nacimiento is required")
	}

	student := &models.Student{
		CI:        strings.TrimSpace(req.CI),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		BirthDate: req.BirthDate,
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if _, err := s.repo.FindByCI(ctx, nil, student.CI); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Alumno con esta CI ya existe")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to check student")
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if _, dup := database.IsUniqueViolation(err); dup {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Alumno con esta CI ya existe")
		}
		return nil, appErrors.Internal(err, "failed to create student")
	}
	s.logger.Info("student registered", zap.String("ci", student.CI))
	return student, nil
}

// Update replaces the mutable fields of a student.
func (s *StudentService) Update(ctx context.Context, ci string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if req.BirthDate.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fecha_nacimiento is required")
	}
	student := &models.Student{
		CI:        ci,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		BirthDate: req.BirthDate,
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Alumno no encontrado")
		}
		return nil, appErrors.Internal(err, "failed to update student")
	}
	return student, nil
}

// Delete removes a student together with their enrollments. Students who
// attended a delivered class are kept.
func (s *StudentService) Delete(ctx context.Context, ci string) error {
	if err := s.repo.Delete(ctx, ci); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, "Alumno no encontrado")
		case errors.Is(err, repository.ErrDeliveredClasses):
			return appErrors.Clone(appErrors.ErrConflict, "El alumno asistió a clases dictadas")
		}
		return appErrors.Internal(err, "failed to delete student")
	}
	invalidateReports(ctx, s.cache)
	return nil
}

// Login identifies a student by ci and issues an access token.
func (s *StudentService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	student, err := s.repo.FindByCI(ctx, nil, strings.TrimSpace(req.CI))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Usuario no encontrado")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	token, expiresAt, err := s.tokens.IssueStudentToken(student)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create access token")
	}
	return &dto.LoginResponse{Name: student.FirstName, Token: token, ExpiresAt: expiresAt}, nil
}

// MyEnrollments lists the enrollments of the authenticated student.
func (s *StudentService) MyEnrollments(ctx context.Context, ci string, page models.Page) ([]models.EnrollmentDetail, *models.Pagination, error) {
	items, total, err := s.enrollments.List(ctx, models.EnrollmentFilter{StudentCI: ci, Page: page})
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list enrollments")
	}
	return items, page.Pagination(total), nil
}
