package models

// Student is a registered learner identified by national id (ci).
type Student struct {
	CI        string `db:"ci" json:"ci"`
	FirstName string `db:"first_name" json:"nombre"`
	LastName  string `db:"last_name" json:"apellido"`
	BirthDate Date   `db:"birth_date" json:"fecha_nacimiento"`
	Phone     string `db:"phone" json:"telefono"`
	Email     string `db:"email" json:"correo"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	SortBy    string
	SortOrder string
	Page
}
