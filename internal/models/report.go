package models

// ActivityRevenue aggregates revenue per activity.
type ActivityRevenue struct {
	ActivityID  int64   `db:"activity_id" json:"id_actividad"`
	Description string  `db:"description" json:"descripcion"`
	Revenue     float64 `db:"revenue" json:"ingresos"`
}

// ActivityStudents counts enrollments per activity.
type ActivityStudents struct {
	ActivityID  int64  `db:"activity_id" json:"id_actividad"`
	Description string `db:"description" json:"descripcion"`
	Students    int    `db:"students" json:"cantidad_alumnos"`
}

// ShiftClasses counts classes per shift.
type ShiftClasses struct {
	ShiftID   int64     `db:"shift_id" json:"id_turno"`
	StartTime TimeOfDay `db:"start_time" json:"hora_inicio"`
	EndTime   TimeOfDay `db:"end_time" json:"hora_fin"`
	Classes   int       `db:"classes" json:"cantidad_clases"`
}
