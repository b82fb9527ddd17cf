package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/uniflow/uniflow-backend/internal/model"
)

// Kind classifies a scheduling outcome.
type Kind string

const (
	KindNone                      Kind = ""
	KindTeacherConflict           Kind = "TEACHER_CONFLICT"
	KindGroupConflict             Kind = "GROUP_CONFLICT"
	KindRoomConflict              Kind = "ROOM_CONFLICT"
	KindCapacityConflict          Kind = "CAPACITY_CONFLICT"
	KindStudentOverlapConflict    Kind = "STUDENT_OVERLAP_CONFLICT"
	KindEnrollmentOverlapConflict Kind = "ENROLLMENT_OVERLAP_CONFLICT"
	KindReferenceNotFound         Kind = "REFERENCE_NOT_FOUND"
	KindAlreadyEnrolled           Kind = "ALREADY_ENROLLED"
	KindSchedulingBusy            Kind = "SCHEDULING_BUSY"
	KindInvalidRequest            Kind = "INVALID_REQUEST"
	KindInternalStoreFailure      Kind = "INTERNAL_STORE_FAILURE"
)

// IsConflict reports whether k is one of the six conflict kinds.
func (k Kind) IsConflict() bool {
	switch k {
	case KindTeacherConflict, KindGroupConflict, KindRoomConflict,
		KindCapacityConflict, KindStudentOverlapConflict, KindEnrollmentOverlapConflict:
		return true
	}
	return false
}

var (
	ErrAlreadyEnrolled    = errors.New("student is already enrolled in this module")
	ErrSchedulingBusy     = errors.New("timetable is being modified, try again")
	ErrInvalidSessionType = errors.New("invalid session type")
)

// ConflictError rejects an assignment or enrollment. It carries enough
// context for the caller to pick another resource without re-querying.
type ConflictError struct {
	Kind     Kind     `json:"kind"`
	Message  string   `json:"message"`
	Resource string   `json:"resource,omitempty"`
	Timeslot string   `json:"timeslot,omitempty"`
	Module   string   `json:"module,omitempty"`
	Capacity int      `json:"capacity,omitempty"`
	Students []string `json:"students,omitempty"`
	Count    int      `json:"count,omitempty"`
}

func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func newTeacherConflict(teacher string, slot *model.Timeslot) *ConflictError {
	return &ConflictError{
		Kind:     KindTeacherConflict,
		Message:  fmt.Sprintf("Teacher %s is already scheduled at %s", teacher, describe(slot)),
		Resource: teacher,
		Timeslot: describe(slot),
	}
}

func newGroupConflict(group string, slot *model.Timeslot) *ConflictError {
	return &ConflictError{
		Kind:     KindGroupConflict,
		Message:  fmt.Sprintf("Group %s is already scheduled at %s", group, describe(slot)),
		Resource: group,
		Timeslot: describe(slot),
	}
}

func newRoomConflict(room string, slot *model.Timeslot) *ConflictError {
	return &ConflictError{
		Kind:     KindRoomConflict,
		Message:  fmt.Sprintf("Room %s is already booked at %s", room, describe(slot)),
		Resource: room,
		Timeslot: describe(slot),
	}
}

func newCapacityConflict(room string, capacity int, group string, students int) *ConflictError {
	return &ConflictError{
		Kind: KindCapacityConflict,
		Message: fmt.Sprintf("Room %s holds %d seats but group %s has %d students",
			room, capacity, group, students),
		Resource: room,
		Capacity: capacity,
		Count:    students,
	}
}

func newStudentOverlapConflict(names []string, slot *model.Timeslot) *ConflictError {
	return &ConflictError{
		Kind: KindStudentOverlapConflict,
		Message: fmt.Sprintf("The following students already have a class at %s: %s",
			describe(slot), strings.Join(names, ", ")),
		Timeslot: describe(slot),
		Students: names,
		Count:    len(names),
	}
}

func newEnrollmentOverlapConflict(student, module string, slot *model.Timeslot) *ConflictError {
	return &ConflictError{
		Kind: KindEnrollmentOverlapConflict,
		Message: fmt.Sprintf("Student %s already has a %s class at this timeslot (%s)",
			student, module, describe(slot)),
		Resource: student,
		Module:   module,
		Timeslot: describe(slot),
		Students: []string{student},
		Count:    1,
	}
}

func describe(slot *model.Timeslot) string {
	if slot == nil {
		return "this timeslot"
	}
	return slot.Descriptor()
}

// ReferenceNotFoundError is fatal to the request that carried the id.
type ReferenceNotFoundError struct {
	Entity string
	ID     int
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Entity, e.ID)
}

// StoreFailureError wraps a storage failure that is not a scheduling conflict.
type StoreFailureError struct {
	Op  string
	Err error
}

func (e *StoreFailureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreFailureError) Unwrap() error { return e.Err }

func storeFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	var sf *StoreFailureError
	if errors.As(err, &sf) {
		return err
	}
	return &StoreFailureError{Op: op, Err: err}
}

// KindOf classifies err into the scheduling error taxonomy.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	var rnf *ReferenceNotFoundError
	if errors.As(err, &rnf) {
		return KindReferenceNotFound
	}
	switch {
	case errors.Is(err, ErrAlreadyEnrolled):
		return KindAlreadyEnrolled
	case errors.Is(err, ErrSchedulingBusy):
		return KindSchedulingBusy
	case errors.Is(err, ErrInvalidSessionType):
		return KindInvalidRequest
	}
	return KindInternalStoreFailure
}

// AsConflict returns the *ConflictError inside err, if any.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
