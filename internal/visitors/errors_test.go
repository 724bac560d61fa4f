package visitors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictFromDBError(t *testing.T) {
	cases := []struct {
		constraint string
		field      DuplicateField
	}{
		{"visitors_email_key", FieldEmail},
		{"visitors_phone_key", FieldPhone},
		{"accounts_email_key", FieldEmail},
		{"accounts_phone_key", FieldPhone},
	}
	for _, tc := range cases {
		err := &pgconn.PgError{Code: "23505", ConstraintName: tc.constraint}
		conflict := conflictFromDBError(fmt.Errorf("insert: %w", err))
		require.NotNil(t, conflict, "constraint %s", tc.constraint)
		assert.Equal(t, tc.field, conflict.Field)
		assert.NotEmpty(t, conflict.Message)
	}
}

func TestConflictFromDBErrorIgnoresOthers(t *testing.T) {
	assert.Nil(t, conflictFromDBError(errors.New("connection reset")))
	assert.Nil(t, conflictFromDBError(&pgconn.PgError{Code: "23503", ConstraintName: "visitors_email_key"}))
	assert.Nil(t, conflictFromDBError(&pgconn.PgError{Code: "23505", ConstraintName: "some_other_key"}))
}

func TestAsConflict(t *testing.T) {
	ce := &ConflictError{Field: FieldEmail, Message: "A visitor with this email already exists"}
	assert.Equal(t, ce, AsConflict(fmt.Errorf("register: %w", ce)))
	assert.Nil(t, AsConflict(errors.New("boom")))
}
