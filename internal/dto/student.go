package dto

import (
	"time"

	"github.com/noah-isme/snow-school-api/internal/models"
)

// RegisterStudentRequest is the POST /alumnos/ payload.
type RegisterStudentRequest struct {
	CI        string      `json:"ci" validate:"required,numeric,min=6,max=10"`
	FirstName string      `json:"nombre" validate:"required,max=100"`
	LastName  string      `json:"apellido" validate:"required,max=100"`
	BirthDate models.Date `json:"fecha_nacimiento"`
	Phone     string      `json:"telefono" validate:"omitempty,max=20"`
	Email     string      `json:"correo" validate:"required,email,max=150"`
}

// UpdateStudentRequest replaces the contact fields of a student. The ci is immutable.
type UpdateStudentRequest struct {
	FirstName string      `json:"nombre" validate:"required,max=100"`
	LastName  string      `json:"apellido" validate:"required,max=100"`
	BirthDate models.Date `json:"fecha_nacimiento"`
	Phone     string      `json:"telefono" validate:"omitempty,max=20"`
	Email     string      `json:"correo" validate:"required,email,max=150"`
}

// LoginRequest identifies a student by ci.
type LoginRequest struct {
	CI string `json:"ci" validate:"required"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Name      string    `json:"nombre"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expira"`
}
