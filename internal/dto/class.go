package dto

import "github.com/noah-isme/snow-school-api/internal/models"

// CreateClassRequest schedules a class explicitly.
type CreateClassRequest struct {
	InstructorCI string `json:"ci_instructor" validate:"required"`
	ActivityID   int64  `json:"id_actividad" validate:"required,gt=0"`
	ShiftID      int64  `json:"id_turno" validate:"required,gt=0"`
}

// ModifyClassRequest patches a class. Omitted fields stay unchanged.
type ModifyClassRequest struct {
	InstructorCI   *string          `json:"ci_instructor" validate:"omitempty,min=1"`
	ShiftID        *int64           `json:"id_turno" validate:"omitempty,gt=0"`
	AddStudents    []EnrollmentItem `json:"agregar_alumnos" validate:"omitempty,dive"`
	RemoveStudents []string         `json:"quitar_alumnos" validate:"omitempty,dive,required"`
}

// Empty reports whether the patch changes nothing.
func (r ModifyClassRequest) Empty() bool {
	return r.InstructorCI == nil && r.ShiftID == nil && len(r.AddStudents) == 0 && len(r.RemoveStudents) == 0
}

// ClassResponse is the class view including its roster.
type ClassResponse struct {
	models.ClassDetail
	Students []models.EnrollmentDetail `json:"alumnos,omitempty"`
}
