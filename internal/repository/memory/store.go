// Package memory provides an in-process timetable store. It enforces the
// same unique and foreign-key constraints as the PostgreSQL schema and
// reports violations with the same constraint identities, so services behave
// identically against either backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/repository"
)

var weekdays = map[string]int{
	"MONDAY": 1, "TUESDAY": 2, "WEDNESDAY": 3, "THURSDAY": 4, "FRIDAY": 5, "SATURDAY": 6, "SUNDAY": 7,
}

// Store is a mutex-guarded set of tables keyed by surrogate id.
type Store struct {
	mu sync.RWMutex

	seq map[string]int

	rooms       map[int]model.Room
	teachers    map[int]model.Teacher
	groups      map[int]model.Group
	modules     map[int]model.Module
	timeslots   map[int]model.Timeslot
	students    map[int]model.Student
	sessions    map[int]model.Session
	enrollments map[int]model.Enrollment

	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		seq:         make(map[string]int),
		rooms:       make(map[int]model.Room),
		teachers:    make(map[int]model.Teacher),
		groups:      make(map[int]model.Group),
		modules:     make(map[int]model.Module),
		timeslots:   make(map[int]model.Timeslot),
		students:    make(map[int]model.Student),
		sessions:    make(map[int]model.Session),
		enrollments: make(map[int]model.Enrollment),
		now:         time.Now,
	}
}

func (s *Store) nextID(table string) int {
	s.seq[table]++
	return s.seq[table]
}

func uniqueViolation(constraint string) error {
	return &repository.UniqueViolationError{
		Constraint: constraint,
		Err:        fmt.Errorf("duplicate key value violates unique constraint %q", constraint),
	}
}

func foreignKeyViolation(constraint string) error {
	return &repository.ForeignKeyViolationError{
		Constraint: constraint,
		Err:        fmt.Errorf("insert or update violates foreign key constraint %q", constraint),
	}
}

// ─── Reference entities ──────────────────────────────────────────

func (s *Store) GetRoom(_ context.Context, id int) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *Store) ListRooms(_ context.Context) ([]model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]model.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

func (s *Store) CreateRoom(_ context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room.Capacity < 1 {
		return fmt.Errorf("room capacity must be positive, got %d", room.Capacity)
	}
	for _, r := range s.rooms {
		if r.Name == room.Name {
			return uniqueViolation(repository.ConstraintRoomName)
		}
	}
	room.ID = s.nextID("rooms")
	room.CreatedAt = s.now()
	s.rooms[room.ID] = *room
	return nil
}

func (s *Store) GetTeacher(_ context.Context, id int) (*model.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teachers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *Store) ListTeachers(_ context.Context) ([]model.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	teachers := make([]model.Teacher, 0, len(s.teachers))
	for _, t := range s.teachers {
		teachers = append(teachers, t)
	}
	sort.Slice(teachers, func(i, j int) bool {
		if teachers[i].LastName != teachers[j].LastName {
			return teachers[i].LastName < teachers[j].LastName
		}
		return teachers[i].FirstName < teachers[j].FirstName
	})
	return teachers, nil
}

func (s *Store) CreateTeacher(_ context.Context, t *model.Teacher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID("teachers")
	t.CreatedAt = s.now()
	s.teachers[t.ID] = *t
	return nil
}

func (s *Store) GetGroup(_ context.Context, id int) (*model.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (s *Store) ListGroups(_ context.Context) ([]model.GroupSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[int]int)
	for _, st := range s.students {
		if st.GroupID != nil {
			counts[*st.GroupID]++
		}
	}
	groups := make([]model.GroupSummary, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, model.GroupSummary{Group: g, StudentCount: counts[g.ID]})
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Program != b.Program {
			return a.Program < b.Program
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		return a.Name < b.Name
	})
	return groups, nil
}

func (s *Store) CreateGroup(_ context.Context, g *model.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.nextID("groups")
	g.CreatedAt = s.now()
	s.groups[g.ID] = *g
	return nil
}

func (s *Store) GetModule(_ context.Context, id int) (*model.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.modules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (s *Store) ListModules(_ context.Context) ([]model.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	modules := make([]model.Module, 0, len(s.modules))
	for _, m := range s.modules {
		modules = append(modules, m)
	}
	sort.Slice(modules, func(i, j int) bool {
		a, b := modules[i], modules[j]
		if a.Program != b.Program {
			return a.Program < b.Program
		}
		if a.Semester != b.Semester {
			return a.Semester < b.Semester
		}
		return a.Name < b.Name
	})
	return modules, nil
}

func (s *Store) CreateModule(_ context.Context, m *model.Module) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ResponsibleTeacherID != nil {
		if _, ok := s.teachers[*m.ResponsibleTeacherID]; !ok {
			return foreignKeyViolation("modules_responsible_teacher_id_fkey")
		}
	}
	m.ID = s.nextID("modules")
	m.CreatedAt = s.now()
	s.modules[m.ID] = *m
	return nil
}

func (s *Store) GetTimeslot(_ context.Context, id int) (*model.Timeslot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.timeslots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *Store) ListTimeslots(_ context.Context) ([]model.Timeslot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slots := make([]model.Timeslot, 0, len(s.timeslots))
	for _, t := range s.timeslots {
		slots = append(slots, t)
	}
	sort.Slice(slots, func(i, j int) bool { return timeslotLess(slots[i], slots[j]) })
	return slots, nil
}

func (s *Store) CreateTimeslot(_ context.Context, t *model.Timeslot) error {
	t.Normalize()
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.timeslots {
		if existing.DayOfWeek == t.DayOfWeek && existing.StartTime == t.StartTime && existing.EndTime == t.EndTime {
			return uniqueViolation(repository.ConstraintTimeslotDayStartEnd)
		}
	}
	t.ID = s.nextID("timeslots")
	t.CreatedAt = s.now()
	s.timeslots[t.ID] = *t
	return nil
}

func (s *Store) GetStudent(_ context.Context, id int) (*model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &st, nil
}

func (s *Store) ListStudentsByGroup(_ context.Context, groupID int) ([]model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	students := []model.Student{}
	for _, st := range s.students {
		if st.GroupID != nil && *st.GroupID == groupID {
			students = append(students, st)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (s *Store) ListStudentsByIDs(_ context.Context, ids []int) ([]model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	students := []model.Student{}
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if st, ok := s.students[id]; ok && !seen[id] {
			seen[id] = true
			students = append(students, st)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (s *Store) CreateStudent(_ context.Context, st *model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.GroupID != nil {
		if _, ok := s.groups[*st.GroupID]; !ok {
			return foreignKeyViolation("students_group_id_fkey")
		}
	}
	st.ID = s.nextID("students")
	st.CreatedAt = s.now()
	s.students[st.ID] = *st
	return nil
}

func timeslotLess(a, b model.Timeslot) bool {
	if weekdays[a.DayOfWeek] != weekdays[b.DayOfWeek] {
		return weekdays[a.DayOfWeek] < weekdays[b.DayOfWeek]
	}
	return a.StartTime < b.StartTime
}
