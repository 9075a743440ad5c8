package models

// Class is one scheduled offering of an Activity taught by one Instructor in
// one Shift. At most one class exists per (instructor, shift).
type Class struct {
	ID           int64  `db:"id" json:"id"`
	InstructorCI string `db:"instructor_ci" json:"ci_instructor"`
	ActivityID   int64  `db:"activity_id" json:"id_actividad"`
	ShiftID      int64  `db:"shift_id" json:"id_turno"`
	Delivered    bool   `db:"delivered" json:"dictada"`
}

// ClassDetail extends Class with display data of its references.
type ClassDetail struct {
	Class
	InstructorName      string    `db:"instructor_name" json:"instructor"`
	ActivityDescription string    `db:"activity_description" json:"actividad"`
	StartTime           TimeOfDay `db:"start_time" json:"hora_inicio"`
	EndTime             TimeOfDay `db:"end_time" json:"hora_fin"`
	StudentCount        int       `db:"student_count" json:"cantidad_alumnos"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	InstructorCI string
	ActivityID   int64
	ShiftID      int64
	Delivered    *bool
	Page
}
