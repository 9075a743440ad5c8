package dto

// InstructorRequest creates an instructor.
type InstructorRequest struct {
	CI        string `json:"ci" validate:"required,numeric,min=1,max=10"`
	FirstName string `json:"nombre" validate:"required,max=100"`
	LastName  string `json:"apellido" validate:"required,max=100"`
}

// UpdateInstructorRequest renames an instructor.
type UpdateInstructorRequest struct {
	FirstName string `json:"nombre" validate:"required,max=100"`
	LastName  string `json:"apellido" validate:"required,max=100"`
}

// ActivityRequest creates or updates an activity.
type ActivityRequest struct {
	Description string   `json:"descripcion" validate:"required,max=100"`
	Cost        *float64 `json:"costo" validate:"required,gte=0"`
}

// EquipmentRequest creates or updates equipment of an activity.
type EquipmentRequest struct {
	Description string   `json:"descripcion" validate:"required,max=100"`
	Cost        *float64 `json:"costo" validate:"required,gte=0"`
}

// ShiftRequest creates or updates a shift. Times are HH:MM or HH:MM:SS.
type ShiftRequest struct {
	StartTime string `json:"hora_inicio" validate:"required"`
	EndTime   string `json:"hora_fin" validate:"required"`
}
