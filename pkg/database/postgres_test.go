package database

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/snow-school-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "snow", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=snow sslmode=disable", dsn)
}

func TestConstraintHelpers(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "enrollments_student_shift_key"})
	constraint, ok := IsUniqueViolation(unique)
	assert.True(t, ok)
	assert.Equal(t, "enrollments_student_shift_key", constraint)

	_, ok = IsForeignKeyViolation(unique)
	assert.False(t, ok)

	fk := &pq.Error{Code: "23503", Constraint: "classes_shift_id_fkey"}
	constraint, ok = IsForeignKeyViolation(fk)
	assert.True(t, ok)
	assert.Equal(t, "classes_shift_id_fkey", constraint)

	_, ok = IsUniqueViolation(fmt.Errorf("plain"))
	assert.False(t, ok)
}
