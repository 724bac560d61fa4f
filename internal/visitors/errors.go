package visitors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// DuplicateField identifies which identity field collided.
type DuplicateField string

const (
	FieldEmail DuplicateField = "email"
	FieldPhone DuplicateField = "contact"
)

// ConflictError reports a duplicate-identity collision with a field-specific message.
type ConflictError struct {
	Field   DuplicateField
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// AsConflict unwraps a ConflictError from err, or returns nil.
func AsConflict(err error) *ConflictError {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}

// Constraint names from 001_schema.sql. Unique indexes are the authoritative
// uniqueness guarantee; the pre-insert duplicate check is advisory.
const (
	constraintVisitorEmail  = "visitors_email_key"
	constraintVisitorPhone  = "visitors_phone_key"
	constraintVisitorTicket = "visitors_ticket_code_key"
	constraintAccountEmail  = "accounts_email_key"
	constraintAccountPhone  = "accounts_phone_key"
)

const pgUniqueViolation = "23505"

// conflictFromDBError translates a unique-index violation raised at insert
// time into the same field-specific ConflictError the pre-check produces.
// Returns nil for any other error.
func conflictFromDBError(err error) *ConflictError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case constraintVisitorEmail:
		return &ConflictError{Field: FieldEmail, Message: "A visitor with this email already exists"}
	case constraintVisitorPhone:
		return &ConflictError{Field: FieldPhone, Message: "A visitor with this contact number already exists"}
	case constraintAccountEmail:
		return &ConflictError{Field: FieldEmail, Message: "An account with this email already exists"}
	case constraintAccountPhone:
		return &ConflictError{Field: FieldPhone, Message: "An account with this contact number already exists"}
	}
	return nil
}
