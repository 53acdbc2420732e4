package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	pgxErr := &pgconn.PgError{Code: UniqueViolation, ConstraintName: "projects_slug_key"}
	pqErr := &pq.Error{Code: UniqueViolation, Constraint: "projects_slug_key"}

	assert.True(t, IsUniqueViolation(pgxErr, ""))
	assert.True(t, IsUniqueViolation(pgxErr, "projects_slug_key"))
	assert.False(t, IsUniqueViolation(pgxErr, "projects_pkey"))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", pgxErr), "projects_slug_key"))

	assert.True(t, IsUniqueViolation(pqErr, "projects_slug_key"))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}, ""))

	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: ForeignKeyViolation}))
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("create awards: %w", &pq.Error{Code: ForeignKeyViolation})))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: UniqueViolation}))
}
