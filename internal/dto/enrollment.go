package dto

// EnrollmentItem is one student in an enrollment request.
type EnrollmentItem struct {
	StudentCI   string `json:"ci_alumno" validate:"required"`
	EquipmentID *int64 `json:"id_equipamiento" validate:"omitempty,gt=0"`
}

// EnrollRequest is the POST /inscripciones/ payload. Exactly one of the single
// student fields or Students must be set.
type EnrollRequest struct {
	InstructorCI string           `json:"ci_instructor" validate:"required"`
	ActivityID   int64            `json:"id_actividad" validate:"required,gt=0"`
	ShiftID      int64            `json:"id_turno" validate:"required,gt=0"`
	StudentCI    string           `json:"ci_alumno"`
	EquipmentID  *int64           `json:"id_equipamiento" validate:"omitempty,gt=0"`
	Students     []EnrollmentItem `json:"alumnos" validate:"omitempty,dive"`
}

// Items normalises the single and bulk forms into one list.
func (r EnrollRequest) Items() []EnrollmentItem {
	if r.StudentCI != "" {
		return []EnrollmentItem{{StudentCI: r.StudentCI, EquipmentID: r.EquipmentID}}
	}
	return r.Students
}

// ClassEnrollmentRequest enrolls one student into an existing class.
type ClassEnrollmentRequest struct {
	ClassID     int64  `json:"id_clase" validate:"required,gt=0"`
	StudentCI   string `json:"ci_alumno" validate:"required"`
	EquipmentID *int64 `json:"id_equipamiento" validate:"omitempty,gt=0"`
}

// EnrollResponse reports the outcome of an enrollment.
type EnrollResponse struct {
	ClassID      int64    `json:"id_clase"`
	ClassCreated bool     `json:"clase_creada"`
	Enrolled     []string `json:"inscriptos"`
}
