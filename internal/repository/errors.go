package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a by-id lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Names of the unique constraints declared in migrations/. The memory store
// reports violations with the same identities.
const (
	ConstraintSessionRoomTimeslot     = "uq_session_room_timeslot"
	ConstraintSessionTeacherTimeslot  = "uq_session_teacher_timeslot"
	ConstraintSessionGroupTimeslot    = "uq_session_group_timeslot"
	ConstraintEnrollmentStudentModule = "uq_enrollment_student_module"
	ConstraintTimeslotDayStartEnd     = "uq_timeslot_day_start_end"
	ConstraintRoomName                = "uq_room_name"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// UniqueViolationError reports which unique constraint rejected a write.
type UniqueViolationError struct {
	Constraint string
	Err        error
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique constraint %q violated", e.Constraint)
}

func (e *UniqueViolationError) Unwrap() error { return e.Err }

// ForeignKeyViolationError reports a write or delete blocked by a referencing row.
type ForeignKeyViolationError struct {
	Constraint string
	Err        error
}

func (e *ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("foreign key constraint %q violated", e.Constraint)
}

func (e *ForeignKeyViolationError) Unwrap() error { return e.Err }

// AsUniqueViolation extracts the constraint identity from err, if any.
func AsUniqueViolation(err error) (string, bool) {
	var uv *UniqueViolationError
	if errors.As(err, &uv) {
		return uv.Constraint, true
	}
	return "", false
}

// translate maps driver errors onto repository errors. The constraint name is
// taken from the structured PgError field, never from the message text.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &UniqueViolationError{Constraint: pgErr.ConstraintName, Err: err}
		case pgForeignKeyViolation:
			return &ForeignKeyViolationError{Constraint: pgErr.ConstraintName, Err: err}
		}
	}
	return err
}
