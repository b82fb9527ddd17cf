package service

import (
	"context"

	"github.com/uniflow/uniflow-backend/internal/model"
)

// ReferenceService exposes read-only views of the reference entities.
type ReferenceService struct {
	store ReferenceReader
}

// NewReferenceService creates a new ReferenceService.
func NewReferenceService(store ReferenceReader) *ReferenceService {
	return &ReferenceService{store: store}
}

func (s *ReferenceService) ListRooms(ctx context.Context) ([]model.Room, error) {
	rooms, err := s.store.ListRooms(ctx)
	return rooms, storeFailure("list rooms", err)
}

func (s *ReferenceService) ListTeachers(ctx context.Context) ([]model.Teacher, error) {
	teachers, err := s.store.ListTeachers(ctx)
	return teachers, storeFailure("list teachers", err)
}

func (s *ReferenceService) ListGroups(ctx context.Context) ([]model.GroupSummary, error) {
	groups, err := s.store.ListGroups(ctx)
	return groups, storeFailure("list groups", err)
}

func (s *ReferenceService) ListModules(ctx context.Context) ([]model.Module, error) {
	modules, err := s.store.ListModules(ctx)
	return modules, storeFailure("list modules", err)
}

func (s *ReferenceService) ListTimeslots(ctx context.Context) ([]model.Timeslot, error) {
	slots, err := s.store.ListTimeslots(ctx)
	return slots, storeFailure("list timeslots", err)
}

// ListGroupStudents retrieves a group's roster.
func (s *ReferenceService) ListGroupStudents(ctx context.Context, groupID int) ([]model.Student, error) {
	if _, err := lookup(ctx, "group", groupID, s.store.GetGroup); err != nil {
		return nil, err
	}
	students, err := s.store.ListStudentsByGroup(ctx, groupID)
	return students, storeFailure("list students by group", err)
}
