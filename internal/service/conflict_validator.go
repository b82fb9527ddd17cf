package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/repository"
)

// ValidatorStore is the read surface the validator evaluates against.
type ValidatorStore interface {
	SessionReader
	ReferenceReader
	ListEnrollmentsByModule(ctx context.Context, moduleID int) ([]model.Enrollment, error)
	ListEnrollmentsByStudent(ctx context.Context, studentID int) ([]model.Enrollment, error)
}

// ConflictValidator decides whether a single proposed session or enrollment
// can be admitted. It holds no state between calls; every check reads the
// store afresh and stops at the first violation.
type ConflictValidator struct {
	store ValidatorStore
	log   zerolog.Logger
}

// NewConflictValidator creates a new ConflictValidator.
func NewConflictValidator(store ValidatorStore, log zerolog.Logger) *ConflictValidator {
	return &ConflictValidator{
		store: store,
		log:   log.With().Str("component", "conflict_validator").Logger(),
	}
}

// ValidateForCreate runs teacher, group, room, capacity and cross-group
// student checks in that order.
func (v *ConflictValidator) ValidateForCreate(ctx context.Context, a model.Assignment) error {
	return v.validate(ctx, a, 0)
}

// ValidateForUpdate runs the create sequence while ignoring the session being updated.
func (v *ConflictValidator) ValidateForUpdate(ctx context.Context, sessionID int, a model.Assignment) error {
	return v.validate(ctx, a, sessionID)
}

func (v *ConflictValidator) validate(ctx context.Context, a model.Assignment, excludeSessionID int) error {
	if err := v.CheckTeacherAvailable(ctx, a.TeacherID, a.TimeslotID, excludeSessionID); err != nil {
		return err
	}
	if err := v.CheckGroupAvailable(ctx, a.GroupID, a.TimeslotID, excludeSessionID); err != nil {
		return err
	}
	if err := v.CheckRoomAvailable(ctx, a.RoomID, a.TimeslotID, excludeSessionID); err != nil {
		return err
	}
	if err := v.CheckRoomCapacity(ctx, a.RoomID, a.GroupID); err != nil {
		return err
	}
	return v.CheckCrossGroupStudentOverlap(ctx, a.GroupID, a.TimeslotID, excludeSessionID)
}

// CheckTeacherAvailable fails when another session already has the teacher at the timeslot.
func (v *ConflictValidator) CheckTeacherAvailable(ctx context.Context, teacherID, timeslotID, excludeSessionID int) error {
	sessions, err := v.store.ListSessionsByTeacherAndTimeslot(ctx, teacherID, timeslotID)
	if err != nil {
		return storeFailure("list sessions by teacher and timeslot", err)
	}
	if !occupied(sessions, excludeSessionID) {
		return nil
	}
	teacher, err := lookup(ctx, "teacher", teacherID, v.store.GetTeacher)
	if err != nil {
		return err
	}
	slot, err := lookup(ctx, "timeslot", timeslotID, v.store.GetTimeslot)
	if err != nil {
		return err
	}
	return newTeacherConflict(teacher.FullName(), slot)
}

// CheckGroupAvailable fails when another session already has the group at the timeslot.
func (v *ConflictValidator) CheckGroupAvailable(ctx context.Context, groupID, timeslotID, excludeSessionID int) error {
	sessions, err := v.store.ListSessionsByGroupAndTimeslot(ctx, groupID, timeslotID)
	if err != nil {
		return storeFailure("list sessions by group and timeslot", err)
	}
	if !occupied(sessions, excludeSessionID) {
		return nil
	}
	group, err := lookup(ctx, "group", groupID, v.store.GetGroup)
	if err != nil {
		return err
	}
	slot, err := lookup(ctx, "timeslot", timeslotID, v.store.GetTimeslot)
	if err != nil {
		return err
	}
	return newGroupConflict(group.Name, slot)
}

// CheckRoomAvailable fails when another session already has the room at the timeslot.
func (v *ConflictValidator) CheckRoomAvailable(ctx context.Context, roomID, timeslotID, excludeSessionID int) error {
	sessions, err := v.store.ListSessionsByRoomAndTimeslot(ctx, roomID, timeslotID)
	if err != nil {
		return storeFailure("list sessions by room and timeslot", err)
	}
	if !occupied(sessions, excludeSessionID) {
		return nil
	}
	room, err := lookup(ctx, "room", roomID, v.store.GetRoom)
	if err != nil {
		return err
	}
	slot, err := lookup(ctx, "timeslot", timeslotID, v.store.GetTimeslot)
	if err != nil {
		return err
	}
	return newRoomConflict(room.Name, slot)
}

// CheckRoomCapacity fails when the group's roster does not fit in the room.
// It does not depend on the timeslot.
func (v *ConflictValidator) CheckRoomCapacity(ctx context.Context, roomID, groupID int) error {
	room, err := lookup(ctx, "room", roomID, v.store.GetRoom)
	if err != nil {
		return err
	}
	group, err := lookup(ctx, "group", groupID, v.store.GetGroup)
	if err != nil {
		return err
	}
	roster, err := v.store.ListStudentsByGroup(ctx, groupID)
	if err != nil {
		return storeFailure("list students by group", err)
	}
	if len(roster) > room.Capacity {
		return newCapacityConflict(room.Name, room.Capacity, group.Name, len(roster))
	}
	return nil
}

// CheckCrossGroupStudentOverlap fails when a student of the group is enrolled
// in the module of another group's session at the same timeslot.
func (v *ConflictValidator) CheckCrossGroupStudentOverlap(ctx context.Context, groupID, timeslotID, excludeSessionID int) error {
	sessions, err := v.store.ListSessionsByTimeslot(ctx, timeslotID)
	if err != nil {
		return storeFailure("list sessions by timeslot", err)
	}
	if len(sessions) == 0 {
		return nil
	}

	roster, err := v.store.ListStudentsByGroup(ctx, groupID)
	if err != nil {
		return storeFailure("list students by group", err)
	}
	if len(roster) == 0 {
		return nil
	}
	members := make(map[int]struct{}, len(roster))
	for _, st := range roster {
		members[st.ID] = struct{}{}
	}

	for _, other := range sessions {
		if other.GroupID == groupID || other.ID == excludeSessionID {
			continue
		}
		enrollments, err := v.store.ListEnrollmentsByModule(ctx, other.ModuleID)
		if err != nil {
			return storeFailure("list enrollments by module", err)
		}

		var overlap []int
		for _, e := range enrollments {
			if _, ok := members[e.StudentID]; ok {
				overlap = append(overlap, e.StudentID)
			}
		}
		if len(overlap) == 0 {
			continue
		}

		students, err := v.store.ListStudentsByIDs(ctx, overlap)
		if err != nil {
			return storeFailure("list students by ids", err)
		}
		names := make([]string, 0, len(students))
		for i := range students {
			names = append(names, students[i].FullName())
		}
		slot, err := lookup(ctx, "timeslot", timeslotID, v.store.GetTimeslot)
		if err != nil {
			return err
		}
		v.log.Debug().
			Int("group_id", groupID).
			Int("other_session_id", other.ID).
			Int("students", len(names)).
			Msg("Cross-group student overlap")
		return newStudentOverlapConflict(names, slot)
	}
	return nil
}

// CheckEnrollmentOverlap fails when a session of the module shares a
// timeslot with a session of any module the student is already enrolled in.
func (v *ConflictValidator) CheckEnrollmentOverlap(ctx context.Context, studentID, moduleID int) error {
	moduleSessions, err := v.store.ListSessionsByModule(ctx, moduleID)
	if err != nil {
		return storeFailure("list sessions by module", err)
	}
	if len(moduleSessions) == 0 {
		return nil
	}
	enrollments, err := v.store.ListEnrollmentsByStudent(ctx, studentID)
	if err != nil {
		return storeFailure("list enrollments by student", err)
	}

	enrolledSessions := make(map[int][]model.Session, len(enrollments))
	for _, target := range moduleSessions {
		for _, e := range enrollments {
			if e.ModuleID == moduleID {
				continue
			}
			sessions, ok := enrolledSessions[e.ModuleID]
			if !ok {
				sessions, err = v.store.ListSessionsByModule(ctx, e.ModuleID)
				if err != nil {
					return storeFailure("list sessions by module", err)
				}
				enrolledSessions[e.ModuleID] = sessions
			}
			for _, held := range sessions {
				if held.TimeslotID != target.TimeslotID {
					continue
				}
				return v.enrollmentOverlap(ctx, studentID, e.ModuleID, held.TimeslotID)
			}
		}
	}
	return nil
}

func (v *ConflictValidator) enrollmentOverlap(ctx context.Context, studentID, moduleID, timeslotID int) error {
	name := fmt.Sprintf("#%d", studentID)
	student, err := v.store.GetStudent(ctx, studentID)
	switch {
	case err == nil:
		name = student.FullName()
	case !errors.Is(err, repository.ErrNotFound):
		return storeFailure("get student", err)
	}
	module, err := lookup(ctx, "module", moduleID, v.store.GetModule)
	if err != nil {
		return err
	}
	slot, err := lookup(ctx, "timeslot", timeslotID, v.store.GetTimeslot)
	if err != nil {
		return err
	}
	return newEnrollmentOverlapConflict(name, module.Name, slot)
}

// occupied reports whether any session other than excludeSessionID is present.
func occupied(sessions []model.Session, excludeSessionID int) bool {
	for _, s := range sessions {
		if s.ID != excludeSessionID {
			return true
		}
	}
	return false
}

// lookup resolves a by-id reference, mapping a missing row to ReferenceNotFoundError.
func lookup[T any](ctx context.Context, entity string, id int, get func(context.Context, int) (*T, error)) (*T, error) {
	v, err := get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &ReferenceNotFoundError{Entity: entity, ID: id}
	}
	if err != nil {
		return nil, storeFailure("get "+entity, err)
	}
	return v, nil
}
