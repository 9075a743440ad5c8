package models

// Instructor teaches classes and is identified by national id (ci).
type Instructor struct {
	CI        string `db:"ci" json:"ci"`
	FirstName string `db:"first_name" json:"nombre"`
	LastName  string `db:"last_name" json:"apellido"`
}

// InstructorFilter lists instructors.
type InstructorFilter struct {
	Search string
	Page
}
