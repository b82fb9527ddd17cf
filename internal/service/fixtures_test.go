package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/repository/memory"
)

// timetable is a small in-memory world for service tests.
type timetable struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
}

func newTimetable(t *testing.T) *timetable {
	t.Helper()
	return &timetable{t: t, ctx: context.Background(), store: memory.New()}
}

func (tt *timetable) teacher(first, last string) *model.Teacher {
	tt.t.Helper()
	x := &model.Teacher{FirstName: first, LastName: last}
	require.NoError(tt.t, tt.store.CreateTeacher(tt.ctx, x))
	return x
}

func (tt *timetable) group(name string) *model.Group {
	tt.t.Helper()
	x := &model.Group{Name: name, Program: "CS", Level: "L2"}
	require.NoError(tt.t, tt.store.CreateGroup(tt.ctx, x))
	return x
}

func (tt *timetable) room(name string, capacity int) *model.Room {
	tt.t.Helper()
	x := &model.Room{Name: name, Capacity: capacity}
	require.NoError(tt.t, tt.store.CreateRoom(tt.ctx, x))
	return x
}

func (tt *timetable) module(name string) *model.Module {
	tt.t.Helper()
	x := &model.Module{Name: name, Program: "CS", Semester: 3, VolumeHours: 30}
	require.NoError(tt.t, tt.store.CreateModule(tt.ctx, x))
	return x
}

func (tt *timetable) timeslot(day, start, end string) *model.Timeslot {
	tt.t.Helper()
	x := &model.Timeslot{DayOfWeek: day, StartTime: start, EndTime: end}
	require.NoError(tt.t, tt.store.CreateTimeslot(tt.ctx, x))
	return x
}

func (tt *timetable) student(first, last string, group *model.Group) *model.Student {
	tt.t.Helper()
	x := &model.Student{FirstName: first, LastName: last, Program: "CS", Level: "L2"}
	if group != nil {
		x.GroupID = &group.ID
	}
	require.NoError(tt.t, tt.store.CreateStudent(tt.ctx, x))
	return x
}

// students adds n students named "<prefix> <i>" to the group.
func (tt *timetable) students(prefix string, n int, group *model.Group) []*model.Student {
	tt.t.Helper()
	out := make([]*model.Student, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, tt.student(prefix, fmt.Sprint(i), group))
	}
	return out
}

func (tt *timetable) enroll(st *model.Student, m *model.Module) {
	tt.t.Helper()
	require.NoError(tt.t, tt.store.CreateEnrollment(tt.ctx, &model.Enrollment{StudentID: st.ID, ModuleID: m.ID}))
}

func (tt *timetable) session(m *model.Module, teacher *model.Teacher, g *model.Group, r *model.Room, slot *model.Timeslot) *model.Session {
	tt.t.Helper()
	x := &model.Session{
		Type:       model.SessionTypeLecture,
		ModuleID:   m.ID,
		TeacherID:  teacher.ID,
		GroupID:    g.ID,
		RoomID:     r.ID,
		TimeslotID: slot.ID,
	}
	require.NoError(tt.t, tt.store.CreateSession(tt.ctx, x))
	return x
}

func (tt *timetable) validator() *ConflictValidator {
	return NewConflictValidator(tt.store, zerolog.Nop())
}

func request(m *model.Module, teacher *model.Teacher, g *model.Group, r *model.Room, slot *model.Timeslot) model.SessionRequest {
	return model.SessionRequest{
		Type:       model.SessionTypeLecture,
		ModuleID:   m.ID,
		TeacherID:  teacher.ID,
		GroupID:    g.ID,
		RoomID:     r.ID,
		TimeslotID: slot.ID,
	}
}

func assignment(teacher *model.Teacher, g *model.Group, r *model.Room, slot *model.Timeslot) model.Assignment {
	return model.Assignment{TeacherID: teacher.ID, GroupID: g.ID, RoomID: r.ID, TimeslotID: slot.ID}
}
