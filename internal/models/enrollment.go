package models

// Enrollment registers a student into a class, optionally renting equipment.
// ShiftID mirrors the class shift so the database can enforce one enrollment
// per student and shift.
type Enrollment struct {
	ClassID     int64  `db:"class_id" json:"id_clase"`
	StudentCI   string `db:"student_ci" json:"ci_alumno"`
	ShiftID     int64  `db:"shift_id" json:"id_turno"`
	EquipmentID *int64 `db:"equipment_id" json:"id_equipamiento,omitempty"`
}

// EnrollmentDetail enriches Enrollment with student, class and equipment info.
type EnrollmentDetail struct {
	Enrollment
	StudentName          string    `db:"student_name" json:"alumno"`
	InstructorCI         string    `db:"instructor_ci" json:"ci_instructor"`
	ActivityID           int64     `db:"activity_id" json:"id_actividad"`
	ActivityDescription  string    `db:"activity_description" json:"actividad"`
	StartTime            TimeOfDay `db:"start_time" json:"hora_inicio"`
	EndTime              TimeOfDay `db:"end_time" json:"hora_fin"`
	EquipmentDescription *string   `db:"equipment_description" json:"equipamiento,omitempty"`
	Delivered            bool      `db:"delivered" json:"dictada"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentCI string
	ClassID   int64
	Page
}
