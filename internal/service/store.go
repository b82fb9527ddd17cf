package service

import (
	"context"

	"github.com/uniflow/uniflow-backend/internal/model"
)

// SessionReader is the read side of the session table. Every lookup is an
// explicit, id-keyed query.
type SessionReader interface {
	GetSession(ctx context.Context, id int) (*model.Session, error)
	ListSessions(ctx context.Context) ([]model.Session, error)
	ListSessionsByTeacherAndTimeslot(ctx context.Context, teacherID, timeslotID int) ([]model.Session, error)
	ListSessionsByGroupAndTimeslot(ctx context.Context, groupID, timeslotID int) ([]model.Session, error)
	ListSessionsByRoomAndTimeslot(ctx context.Context, roomID, timeslotID int) ([]model.Session, error)
	ListSessionsByModule(ctx context.Context, moduleID int) ([]model.Session, error)
	ListSessionsByTimeslot(ctx context.Context, timeslotID int) ([]model.Session, error)
	ListSessionsByGroup(ctx context.Context, groupID int) ([]model.Session, error)
	ListSessionsByTeacher(ctx context.Context, teacherID int) ([]model.Session, error)
}

// SessionWriter persists sessions. Create and Update are atomic and report
// (resource, timeslot) collisions as *repository.UniqueViolationError.
type SessionWriter interface {
	CreateSession(ctx context.Context, s *model.Session) error
	UpdateSession(ctx context.Context, s *model.Session) error
	DeleteSession(ctx context.Context, id int) error
}

// EnrollmentStore is the membership index of students in modules.
type EnrollmentStore interface {
	GetEnrollment(ctx context.Context, id int) (*model.Enrollment, error)
	ListEnrollmentsByModule(ctx context.Context, moduleID int) ([]model.Enrollment, error)
	ListEnrollmentsByStudent(ctx context.Context, studentID int) ([]model.Enrollment, error)
	EnrollmentExists(ctx context.Context, studentID, moduleID int) (bool, error)
	CreateEnrollment(ctx context.Context, e *model.Enrollment) error
	DeleteEnrollment(ctx context.Context, id int) error
}

// ReferenceReader resolves the reference entities a session points at.
type ReferenceReader interface {
	GetRoom(ctx context.Context, id int) (*model.Room, error)
	ListRooms(ctx context.Context) ([]model.Room, error)
	GetTeacher(ctx context.Context, id int) (*model.Teacher, error)
	ListTeachers(ctx context.Context) ([]model.Teacher, error)
	GetGroup(ctx context.Context, id int) (*model.Group, error)
	ListGroups(ctx context.Context) ([]model.GroupSummary, error)
	GetModule(ctx context.Context, id int) (*model.Module, error)
	ListModules(ctx context.Context) ([]model.Module, error)
	GetTimeslot(ctx context.Context, id int) (*model.Timeslot, error)
	ListTimeslots(ctx context.Context) ([]model.Timeslot, error)
	GetStudent(ctx context.Context, id int) (*model.Student, error)
	ListStudentsByGroup(ctx context.Context, groupID int) ([]model.Student, error)
	ListStudentsByIDs(ctx context.Context, ids []int) ([]model.Student, error)
}

// TimetableStore is everything the scheduling services need from storage.
// Both *repository.Store and *memory.Store satisfy it.
type TimetableStore interface {
	SessionReader
	SessionWriter
	EnrollmentStore
	ReferenceReader
}
