package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/snow-school-api/internal/dto"
	"github.com/noah-isme/snow-school-api/internal/models"
	"github.com/noah-isme/snow-school-api/pkg/database"
	appErrors "github.com/noah-isme/snow-school-api/pkg/errors"
)

// Constraint names from the schema, used to classify unique violations that
// slip past the explicit checks under concurrent writes.
const (
	constraintInstructorShift = "classes_instructor_shift_key"
	constraintStudentShift    = "enrollments_student_shift_key"
	constraintEnrollmentPK    = "enrollments_pkey"
)

type classStore interface {
	ReferencesExist(ctx context.Context, exec sqlx.ExtContext, instructorCI string, activityID, shiftID int64) (bool, error)
	LockByAssignment(ctx context.Context, exec sqlx.ExtContext, instructorCI string, activityID, shiftID int64) (*models.Class, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Class, error)
	InstructorBusy(ctx context.Context, exec sqlx.ExtContext, instructorCI string, shiftID, excludeID int64) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, class *models.Class) error
}

type enrollmentStore interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	Exists(ctx context.Context, exec sqlx.ExtContext, classID int64, studentCI string) (bool, error)
	StudentBusy(ctx context.Context, exec sqlx.ExtContext, studentCI string, shiftID, excludeClassID int64) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error
	Delete(ctx context.Context, exec sqlx.ExtContext, classID int64, studentCI string) error
}

type studentLookup interface {
	Exists(ctx context.Context, exec sqlx.ExtContext, ci string) (bool, error)
}

type equipmentLookup interface {
	FindEquipment(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Equipment, error)
}

// enrollmentRules holds the scheduling checks shared by the enrollment and
// class services. Every method runs on the caller's transaction.
type enrollmentRules struct {
	classes     classStore
	enrollments enrollmentStore
	students    studentLookup
	equipment   equipmentLookup
	metrics     *MetricsService
}

func (r *enrollmentRules) conflict(reason, message string) error {
	r.metrics.RecordEnrollmentConflict(reason)
	return appErrors.Clone(appErrors.ErrConflict, message)
}

// instructorFree fails when the instructor already teaches a class other than excludeID in the shift.
func (r *enrollmentRules) instructorFree(ctx context.Context, tx sqlx.ExtContext, instructorCI string, shiftID, excludeID int64) error {
	busy, err := r.classes.InstructorBusy(ctx, tx, instructorCI, shiftID, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check instructor schedule")
	}
	if busy {
		return r.conflict(ConflictInstructorShift, "El instructor ya tiene una clase en este turno")
	}
	return nil
}

// createClass inserts an undelivered class after checking the instructor is free.
func (r *enrollmentRules) createClass(ctx context.Context, tx sqlx.ExtContext, instructorCI string, activityID, shiftID int64) (*models.Class, error) {
	if err := r.instructorFree(ctx, tx, instructorCI, shiftID, 0); err != nil {
		return nil, err
	}
	class := &models.Class{InstructorCI: instructorCI, ActivityID: activityID, ShiftID: shiftID}
	if err := r.classes.Create(ctx, tx, class); err != nil {
		return nil, r.translateWrite(err, "", "failed to create class")
	}
	return class, nil
}

// addStudent enrolls one student into class after every per-student check.
func (r *enrollmentRules) addStudent(ctx context.Context, tx sqlx.ExtContext, class *models.Class, item dto.EnrollmentItem) error {
	item.StudentCI = strings.TrimSpace(item.StudentCI)
	found, err := r.students.Exists(ctx, tx, item.StudentCI)
	if err != nil {
		return appErrors.Internal(err, "failed to check student")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Alumno %s no válido", item.StudentCI))
	}

	if item.EquipmentID != nil {
		equipment, err := r.equipment.FindEquipment(ctx, tx, *item.EquipmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Equipamiento %d no válido", *item.EquipmentID))
			}
			return appErrors.Internal(err, "failed to load equipment")
		}
		if equipment.ActivityID != class.ActivityID {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Equipamiento %d no corresponde a la actividad", *item.EquipmentID))
		}
	}

	enrolled, err := r.enrollments.Exists(ctx, tx, class.ID, item.StudentCI)
	if err != nil {
		return appErrors.Internal(err, "failed to check enrollment")
	}
	if enrolled {
		return r.conflict(ConflictAlreadyEnrolled, fmt.Sprintf("El alumno %s ya está inscrito en esta clase", item.StudentCI))
	}

	busy, err := r.enrollments.StudentBusy(ctx, tx, item.StudentCI, class.ShiftID, class.ID)
	if err != nil {
		return appErrors.Internal(err, "failed to check student schedule")
	}
	if busy {
		return r.conflict(ConflictStudentShift, fmt.Sprintf("El alumno %s ya tiene una clase en este turno", item.StudentCI))
	}

	enrollment := &models.Enrollment{ClassID: class.ID, StudentCI: item.StudentCI, ShiftID: class.ShiftID, EquipmentID: item.EquipmentID}
	if err := r.enrollments.Create(ctx, tx, enrollment); err != nil {
		return r.translateWrite(err, item.StudentCI, "failed to create enrollment")
	}
	return nil
}

// translateWrite maps constraint violations raised by a concurrent writer onto
// the same conflicts the explicit checks report.
func (r *enrollmentRules) translateWrite(err error, studentCI, message string) error {
	if constraint, ok := database.IsUniqueViolation(err); ok {
		switch constraint {
		case constraintInstructorShift:
			return r.conflict(ConflictInstructorShift, "El instructor ya tiene una clase en este turno")
		case constraintStudentShift:
			return r.conflict(ConflictStudentShift, fmt.Sprintf("El alumno %s ya tiene una clase en este turno", studentCI))
		case constraintEnrollmentPK:
			return r.conflict(ConflictAlreadyEnrolled, fmt.Sprintf("El alumno %s ya está inscrito en esta clase", studentCI))
		}
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "conflicting write")
	}
	return appErrors.Internal(err, message)
}

// EnrollmentService is the entry point that places students into classes while
// keeping one class per instructor and shift and one class per student and shift.
type EnrollmentService struct {
	rules     *enrollmentRules
	tx        txProvider
	cache     reportInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(tx txProvider, classes classStore, enrollments enrollmentStore, students studentLookup, equipment equipmentLookup, cache reportInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := &enrollmentRules{classes: classes, enrollments: enrollments, students: students, equipment: equipment, metrics: metrics}
	return &EnrollmentService{rules: rules, tx: tx, cache: cache, validator: validate, logger: logger}
}

// List returns enrollments with pagination metadata.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	items, total, err := s.rules.enrollments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list enrollments")
	}
	return items, filter.Page.Pagination(total), nil
}

// Enroll resolves or lazily creates the class for the (instructor, activity,
// shift) triple and enrolls every requested student, all or nothing.
func (s *EnrollmentService) Enroll(ctx context.Context, req dto.EnrollRequest) (resp *dto.EnrollResponse, err error) {
	if err = s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if (req.StudentCI == "") == (len(req.Students) == 0) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "provide either ci_alumno or alumnos")
	}
	if req.StudentCI == "" && req.EquipmentID != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id_equipamiento belongs inside each item of alumnos")
	}
	instructorCI := strings.TrimSpace(req.InstructorCI)
	requested := req.Items()
	items := make([]dto.EnrollmentItem, 0, len(requested))
	for _, item := range requested {
		item.StudentCI = strings.TrimSpace(item.StudentCI)
		items = append(items, item)
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

	valid, err := s.rules.classes.ReferencesExist(ctx, tx, instructorCI, req.ActivityID, req.ShiftID)
	if err != nil {
		err = appErrors.Internal(err, "failed to verify class references")
		return nil, err
	}
	if !valid {
		err = appErrors.Clone(appErrors.ErrValidation, "Instructor, actividad o turno no válidos")
		return nil, err
	}

	created := false
	class, err := s.rules.classes.LockByAssignment(ctx, tx, instructorCI, req.ActivityID, req.ShiftID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		class, err = s.rules.createClass(ctx, tx, instructorCI, req.ActivityID, req.ShiftID)
		if err != nil {
			return nil, err
		}
		created = true
	case err != nil:
		err = appErrors.Internal(err, "failed to load class")
		return nil, err
	}

	if class.Delivered {
		s.rules.metrics.RecordEnrollmentConflict(ConflictClassDelivered)
		err = appErrors.Clone(appErrors.ErrClassDelivered, "La clase ya fue dictada")
		return nil, err
	}

	enrolled := make([]string, 0, len(items))
	for _, item := range items {
		if err = s.rules.addStudent(ctx, tx, class, item); err != nil {
			s.logger.Info("enrollment rejected",
				zap.Int64("class_id", class.ID),
				zap.String("student_ci", item.StudentCI),
				zap.Error(err),
			)
			return nil, err
		}
		enrolled = append(enrolled, item.StudentCI)
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Internal(err, "failed to commit enrollment")
		return nil, err
	}

	s.rules.metrics.RecordEnrollments(len(enrolled))
	invalidateReports(ctx, s.cache)
	s.logger.Info("students enrolled",
		zap.Int64("class_id", class.ID),
		zap.Bool("class_created", created),
		zap.Int("count", len(enrolled)),
	)
	return &dto.EnrollResponse{ClassID: class.ID, ClassCreated: created, Enrolled: enrolled}, nil
}

// EnrollIntoClass adds one student to an existing class by id.
func (s *EnrollmentService) EnrollIntoClass(ctx context.Context, req dto.ClassEnrollmentRequest) (resp *dto.EnrollResponse, err error) {
	if err = s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
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

	class, err := s.rules.classes.LockByID(ctx, tx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrNotFound, "Clase no encontrada")
			return nil, err
		}
		err = appErrors.Internal(err, "failed to load class")
		return nil, err
	}
	if class.Delivered {
		s.rules.metrics.RecordEnrollmentConflict(ConflictClassDelivered)
		err = appErrors.Clone(appErrors.ErrClassDelivered, "La clase ya fue dictada")
		return nil, err
	}
	if err = s.rules.addStudent(ctx, tx, class, dto.EnrollmentItem{StudentCI: req.StudentCI, EquipmentID: req.EquipmentID}); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Internal(err, "failed to commit enrollment")
		return nil, err
	}

	s.rules.metrics.RecordEnrollments(1)
	invalidateReports(ctx, s.cache)
	return &dto.EnrollResponse{ClassID: class.ID, Enrolled: []string{req.StudentCI}}, nil
}

// Unenroll removes a student from a class that has not been delivered.
func (s *EnrollmentService) Unenroll(ctx context.Context, classID int64, studentCI string) (err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Internal(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	class, err := s.rules.classes.LockByID(ctx, tx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrNotFound, "Clase no encontrada")
			return err
		}
		err = appErrors.Internal(err, "failed to load class")
		return err
	}
	if class.Delivered {
		err = appErrors.Clone(appErrors.ErrClassDelivered, "La clase ya fue dictada")
		return err
	}
	if err = s.rules.enrollments.Delete(ctx, tx, classID, studentCI); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrNotFound, "Inscripción no encontrada")
			return err
		}
		err = appErrors.Internal(err, "failed to delete enrollment")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Internal(err, "failed to commit unenrollment")
		return err
	}
	invalidateReports(ctx, s.cache)
	return nil
}
