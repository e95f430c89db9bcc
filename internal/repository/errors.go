package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Constraint names from the schema. Postgres reports them on violation and the
// in-memory store reports the same names.
const (
	ConstraintTicketSeat  = "tickets_event_seat_uq"
	ConstraintUserEmail   = "users_email_key"
	ConstraintTicketEvent = "tickets_event_id_fkey"
	ConstraintTicketUser  = "tickets_user_id_fkey"
	ConstraintEventVenue  = "events_venue_id_fkey"
)

var (
	ErrSeatTaken  = errors.New("seat is already taken")
	ErrEmailTaken = errors.New("email is already registered")
	ErrForeignKey = errors.New("foreign key violation")
)

// ConstraintError reports which constraint rejected a write.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%v (%s)", e.Err, e.Constraint)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// ConstraintOf returns the violated constraint name, or "" when err is not a constraint violation.
func ConstraintOf(err error) string {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Constraint
	}
	return ""
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code.Name() {
	case "unique_violation":
		switch pqErr.Constraint {
		case ConstraintTicketSeat:
			return &ConstraintError{Constraint: pqErr.Constraint, Err: ErrSeatTaken}
		case ConstraintUserEmail:
			return &ConstraintError{Constraint: pqErr.Constraint, Err: ErrEmailTaken}
		}
	case "foreign_key_violation":
		return &ConstraintError{Constraint: pqErr.Constraint, Err: ErrForeignKey}
	}
	return err
}
