// Package seed builds a small demo timetable. Reference rows are written
// directly; sessions and enrollments go through the services so every one
// of them is admission-checked.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/service"
)

// ReferenceWriter creates the reference rows a timetable is built from.
type ReferenceWriter interface {
	CreateRoom(ctx context.Context, room *model.Room) error
	CreateTeacher(ctx context.Context, t *model.Teacher) error
	CreateGroup(ctx context.Context, g *model.Group) error
	CreateModule(ctx context.Context, m *model.Module) error
	CreateTimeslot(ctx context.Context, t *model.Timeslot) error
	CreateStudent(ctx context.Context, st *model.Student) error
}

// Summary counts what Demo wrote and what the admission checks turned away.
type Summary struct {
	Rooms       int
	Teachers    int
	Groups      int
	Students    int
	Modules     int
	Timeslots   int
	Sessions    int
	Enrollments int
	Rejected    map[service.Kind]int
}

// Demo seeds two cohorts sharing a teaching staff over one week.
// A few requests are deliberately impossible so a fresh install shows
// the conflict checks at work; they land in Summary.Rejected.
func Demo(ctx context.Context, w ReferenceWriter, sessions *service.SessionService, enrollments *service.EnrollmentService, log zerolog.Logger) (*Summary, error) {
	sum := &Summary{Rejected: map[service.Kind]int{}}

	amphi := &model.Room{Name: "Amphi A", Capacity: 120}
	lab := &model.Room{Name: "Lab 2", Capacity: 4}
	td := &model.Room{Name: "TD 101", Capacity: 30}
	for _, r := range []*model.Room{amphi, lab, td} {
		if err := w.CreateRoom(ctx, r); err != nil {
			return nil, fmt.Errorf("create room %s: %w", r.Name, err)
		}
		sum.Rooms++
	}

	hopper := &model.Teacher{FirstName: "Grace", LastName: "Hopper"}
	knuth := &model.Teacher{FirstName: "Donald", LastName: "Knuth"}
	liskov := &model.Teacher{FirstName: "Barbara", LastName: "Liskov"}
	for _, t := range []*model.Teacher{hopper, knuth, liskov} {
		if err := w.CreateTeacher(ctx, t); err != nil {
			return nil, fmt.Errorf("create teacher %s: %w", t.FullName(), err)
		}
		sum.Teachers++
	}

	csA := &model.Group{Name: "CS-L2-A", Program: "CS", Level: "L2"}
	csB := &model.Group{Name: "CS-L2-B", Program: "CS", Level: "L2"}
	for _, g := range []*model.Group{csA, csB} {
		if err := w.CreateGroup(ctx, g); err != nil {
			return nil, fmt.Errorf("create group %s: %w", g.Name, err)
		}
		sum.Groups++
	}

	roster := map[*model.Group][]string{
		csA: {"Alice Martin", "Bilal Haddad", "Chloe Dubois", "Dario Rossi", "Emma Laurent", "Farid Benali"},
		csB: {"Gwen Moreau", "Hugo Petit", "Ines Garcia", "Jules Bernard", "Kenza Amrani"},
	}
	var students []*model.Student
	for _, g := range []*model.Group{csA, csB} {
		for _, name := range roster[g] {
			first, last, _ := strings.Cut(name, " ")
			st := &model.Student{FirstName: first, LastName: last, Program: g.Program, Level: g.Level, GroupID: &g.ID}
			if err := w.CreateStudent(ctx, st); err != nil {
				return nil, fmt.Errorf("create student %s: %w", name, err)
			}
			students = append(students, st)
			sum.Students++
		}
	}

	algorithms := &model.Module{Name: "Algorithms", Program: "CS", Semester: 3, VolumeHours: 42, ResponsibleTeacherID: &knuth.ID}
	compilers := &model.Module{Name: "Compilers", Program: "CS", Semester: 3, VolumeHours: 36, ResponsibleTeacherID: &hopper.ID}
	abstractions := &model.Module{Name: "Data Abstraction", Program: "CS", Semester: 3, VolumeHours: 30, ResponsibleTeacherID: &liskov.ID}
	for _, m := range []*model.Module{algorithms, compilers, abstractions} {
		if err := w.CreateModule(ctx, m); err != nil {
			return nil, fmt.Errorf("create module %s: %w", m.Name, err)
		}
		sum.Modules++
	}

	monAM := &model.Timeslot{DayOfWeek: "MONDAY", StartTime: "08:30", EndTime: "10:00"}
	monPM := &model.Timeslot{DayOfWeek: "MONDAY", StartTime: "14:00", EndTime: "15:30"}
	tueAM := &model.Timeslot{DayOfWeek: "TUESDAY", StartTime: "08:30", EndTime: "10:00"}
	wedAM := &model.Timeslot{DayOfWeek: "WEDNESDAY", StartTime: "10:15", EndTime: "11:45"}
	for _, t := range []*model.Timeslot{monAM, monPM, tueAM, wedAM} {
		if err := w.CreateTimeslot(ctx, t); err != nil {
			return nil, fmt.Errorf("create timeslot %s: %w", t.Descriptor(), err)
		}
		sum.Timeslots++
	}

	// Enroll cohort A in algorithms and compilers, cohort B in abstractions,
	// before sessions exist so no enrollment can collide.
	for _, st := range students {
		modules := []*model.Module{abstractions}
		if *st.GroupID == csA.ID {
			modules = []*model.Module{algorithms, compilers}
		}
		for _, m := range modules {
			if err := sum.record(log, "enroll", func() error {
				_, err := enrollments.Enroll(ctx, model.EnrollRequest{StudentID: st.ID, ModuleID: m.ID})
				return err
			}); err != nil {
				return nil, err
			}
		}
	}

	plan := []struct {
		typ     model.SessionType
		module  *model.Module
		teacher *model.Teacher
		group   *model.Group
		room    *model.Room
		slot    *model.Timeslot
	}{
		{model.SessionTypeLecture, algorithms, knuth, csA, amphi, monAM},
		{model.SessionTypeLecture, abstractions, liskov, csB, td, monAM},
		{model.SessionTypeTutorial, compilers, hopper, csA, td, monPM},
		{model.SessionTypePractical, abstractions, liskov, csB, td, tueAM},
		{model.SessionTypeTutorial, algorithms, knuth, csA, td, wedAM},
		// Knuth is already teaching cohort A on Monday morning.
		{model.SessionTypeTutorial, algorithms, knuth, csB, lab, monAM},
		// Six students do not fit in a four seat lab.
		{model.SessionTypePractical, compilers, hopper, csA, lab, tueAM},
	}
	for _, p := range plan {
		req := model.SessionRequest{
			Type:       p.typ,
			ModuleID:   p.module.ID,
			TeacherID:  p.teacher.ID,
			GroupID:    p.group.ID,
			RoomID:     p.room.ID,
			TimeslotID: p.slot.ID,
		}
		if err := sum.record(log, "session", func() error {
			_, err := sessions.Create(ctx, req)
			return err
		}); err != nil {
			return nil, err
		}
	}

	return sum, nil
}

// record counts a write as created or rejected. Only infrastructure
// failures abort the seed.
func (s *Summary) record(log zerolog.Logger, what string, write func() error) error {
	err := write()
	kind := service.KindOf(err)
	switch {
	case err == nil:
		if what == "session" {
			s.Sessions++
		} else {
			s.Enrollments++
		}
		return nil
	case kind.IsConflict() || kind == service.KindAlreadyEnrolled:
		s.Rejected[kind]++
		log.Info().Str("write", what).Str("kind", string(kind)).Msg(err.Error())
		return nil
	default:
		return fmt.Errorf("seed %s: %w", what, err)
	}
}
