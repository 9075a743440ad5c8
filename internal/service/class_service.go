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
	appErrors "github.com/noah-isme/snow-school-api/pkg/errors"
)

type classRepository interface {
	classStore
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error)
	FindDetailByID(ctx context.Context, id int64) (*models.ClassDetail, error)
	UpdateAssignment(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error
	MarkDelivered(ctx context.Context, id int64) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error
}

type classRosterRepository interface {
	enrollmentStore
	ListByClass(ctx context.Context, classID int64) ([]models.EnrollmentDetail, error)
	StudentCIs(ctx context.Context, exec sqlx.ExtContext, classID int64) ([]string, error)
}

type shiftFinder interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Shift, error)
}

type instructorFinder interface {
	FindByCI(ctx context.Context, exec sqlx.ExtContext, ci string) (*models.Instructor, error)
}

// ClassService manages classes outside the lazy creation done by enrollment.
type ClassService struct {
	repo        classRepository
	roster      classRosterRepository
	shifts      shiftFinder
	instructors instructorFinder
	rules       *enrollmentRules
	tx          txProvider
	cache       reportInvalidator
	now         Clock
	location    *time.Location
	validator   *validator.Validate
	logger      *zap.Logger
}

// ClassServiceConfig carries the collaborators of ClassService that are not repositories.
type ClassServiceConfig struct {
	Cache    reportInvalidator
	Metrics  *MetricsService
	Now      Clock
	Location *time.Location
}

// NewClassService constructs a ClassService. Shift windows are evaluated in cfg.Location.
func NewClassService(tx txProvider, repo classRepository, roster classRosterRepository, shifts shiftFinder, instructors instructorFinder, students studentLookup, equipment equipmentLookup, cfg ClassServiceConfig, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	rules := &enrollmentRules{classes: repo, enrollments: roster, students: students, equipment: equipment, metrics: cfg.Metrics}
	return &ClassService{
		repo:        repo,
		roster:      roster,
		shifts:      shifts,
		instructors: instructors,
		rules:       rules,
		tx:          tx,
		cache:       cfg.Cache,
		now:         cfg.Now,
		location:    cfg.Location,
		validator:   validate,
		logger:      logger,
	}
}

// List returns classes with pagination metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list classes")
	}
	return classes, filter.Page.Pagination(total), nil
}

// Get returns a class with its roster.
func (s *ClassService) Get(ctx context.Context, id int64) (*dto.ClassResponse, error) {
	class, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Clase no encontrada")
		}
		return nil, appErrors.Internal(err, "failed to load class")
	}
	students, err := s.roster.ListByClass(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load class roster")
	}
	return &dto.ClassResponse{ClassDetail: *class, Students: students}, nil
}

// ListStudents returns the roster of a class.
func (s *ClassService) ListStudents(ctx context.Context, id int64) ([]models.EnrollmentDetail, error) {
	if _, err := s.repo.FindDetailByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Clase no encontrada")
		}
		return nil, appErrors.Internal(err, "failed to load class")
	}
	students, err := s.roster.ListByClass(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load class roster")
	}
	if students == nil {
		students = []models.EnrollmentDetail{}
	}
	return students, nil
}

// Create schedules a class explicitly.
func (s *ClassService) Create(ctx context.Context, req dto.CreateClassRequest) (class *models.Class, err error) {
	if err = s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	instructorCI := strings.TrimSpace(req.InstructorCI)

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	valid, err := s.repo.ReferencesExist(ctx, tx, instructorCI, req.ActivityID, req.ShiftID)
	if err != nil {
		err = appErrors.Internal(err, "failed to verify class references")
		return nil, err
	}
	if !valid {
		err = appErrors.Clone(appErrors.ErrValidation, "Instructor, actividad o turno no válidos")
		return nil, err
	}
	if class, err = s.rules.createClass(ctx, tx, instructorCI, req.ActivityID, req.ShiftID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Internal(err, "failed to commit class")
		return nil, err
	}
	invalidateReports(ctx, s.cache)
	return class, nil
}

// Modify changes the instructor or shift of a class and adjusts its roster.
// Removals apply first, then the reassignment, then additions, so a student
// can be swapped in one call.
func (s *ClassService) Modify(ctx context.Context, id int64, req dto.ModifyClassRequest) (result *dto.ClassResponse, err error) {
	if err = s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to modify")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	class, err := s.repo.LockByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrNotFound, "Clase no encontrada")
			return nil, err
		}
		err = appErrors.Internal(err, "failed to load class")
		return nil, err
	}
	if class.Delivered {
		err = appErrors.Clone(appErrors.ErrClassDelivered, "No se puede modificar una clase dictada")
		return nil, err
	}
	if err = s.ensureNotInProgress(ctx, tx, class.ShiftID); err != nil {
		return nil, err
	}

	for _, ci := range req.RemoveStudents {
		if err = s.roster.Delete(ctx, tx, class.ID, ci); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				err = appErrors.Clone(appErrors.ErrNotFound, "El alumno "+ci+" no está inscrito en esta clase")
				return nil, err
			}
			err = appErrors.Internal(err, "failed to remove student")
			return nil, err
		}
	}
	if err = s.reassign(ctx, tx, class, req); err != nil {
		return nil, err
	}
	for _, item := range req.AddStudents {
		if err = s.rules.addStudent(ctx, tx, class, item); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Internal(err, "failed to commit class changes")
		return nil, err
	}
	s.rules.metrics.RecordEnrollments(len(req.AddStudents))
	invalidateReports(ctx, s.cache)
	s.logger.Info("class modified", zap.Int64("class_id", class.ID), zap.Int("added", len(req.AddStudents)), zap.Int("removed", len(req.RemoveStudents)))

	return s.Get(ctx, class.ID)
}

// reassign applies instructor and shift changes, re-checking both scheduling invariants.
func (s *ClassService) reassign(ctx context.Context, tx *sqlx.Tx, class *models.Class, req dto.ModifyClassRequest) error {
	changed := false
	if req.InstructorCI != nil {
		ci := strings.TrimSpace(*req.InstructorCI)
		if ci != class.InstructorCI {
			if _, err := s.instructors.FindByCI(ctx, tx, ci); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return appErrors.Clone(appErrors.ErrValidation, "Instructor no válido")
				}
				return appErrors.Internal(err, "failed to load instructor")
			}
			class.InstructorCI = ci
			changed = true
		}
	}
	shiftChanged := false
	if req.ShiftID != nil && *req.ShiftID != class.ShiftID {
		if _, err := s.shifts.FindByID(ctx, tx, *req.ShiftID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, "Turno no válido")
			}
			return appErrors.Internal(err, "failed to load shift")
		}
		class.ShiftID = *req.ShiftID
		changed = true
		shiftChanged = true
	}
	if !changed {
		return nil
	}

	if err := s.rules.instructorFree(ctx, tx, class.InstructorCI, class.ShiftID, class.ID); err != nil {
		return err
	}
	if shiftChanged {
		// Students who stay must be free in the target shift.
		current, err := s.roster.StudentCIs(ctx, tx, class.ID)
		if err != nil {
			return appErrors.Internal(err, "failed to load class roster")
		}
		for _, studentCI := range current {
			busy, err := s.roster.StudentBusy(ctx, tx, studentCI, class.ShiftID, class.ID)
			if err != nil {
				return appErrors.Internal(err, "failed to check student schedule")
			}
			if busy {
				return s.rules.conflict(ConflictStudentShift, "El alumno "+studentCI+" ya tiene una clase en este turno")
			}
		}
	}

	if err := s.repo.UpdateAssignment(ctx, tx, class); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Clase no encontrada")
		}
		return s.rules.translateWrite(err, "", "failed to update class")
	}
	return nil
}

// ensureNotInProgress rejects changes while the shift window is open in the school's timezone.
func (s *ClassService) ensureNotInProgress(ctx context.Context, tx *sqlx.Tx, shiftID int64) error {
	shift, err := s.shifts.FindByID(ctx, tx, shiftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "Turno no válido")
		}
		return appErrors.Internal(err, "failed to load shift")
	}
	if shift.Contains(s.now().In(s.location)) {
		return appErrors.Clone(appErrors.ErrShiftInProgress, "No se puede modificar una clase durante su turno")
	}
	return nil
}

// MarkDelivered flags a class as taught. Repeating the call is harmless.
func (s *ClassService) MarkDelivered(ctx context.Context, id int64) (*dto.ClassResponse, error) {
	if err := s.repo.MarkDelivered(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Clase no encontrada")
		}
		return nil, appErrors.Internal(err, "failed to mark class delivered")
	}
	return s.Get(ctx, id)
}

// Delete removes an undelivered class and its enrollments.
func (s *ClassService) Delete(ctx context.Context, id int64) (err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Internal(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	class, err := s.repo.LockByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrNotFound, "Clase no encontrada")
			return err
		}
		err = appErrors.Internal(err, "failed to load class")
		return err
	}
	if class.Delivered {
		err = appErrors.Clone(appErrors.ErrClassDelivered, "No se puede eliminar una clase dictada")
		return err
	}
	if err = s.repo.Delete(ctx, tx, id); err != nil {
		err = appErrors.Internal(err, "failed to delete class")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Internal(err, "failed to commit class deletion")
		return err
	}
	invalidateReports(ctx, s.cache)
	return nil
}
