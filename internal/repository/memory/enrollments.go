package memory

import (
	"context"
	"sort"

	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/repository"
)

func (s *Store) GetEnrollment(_ context.Context, id int) (*model.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enrollments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (s *Store) ListEnrollmentsByModule(_ context.Context, moduleID int) ([]model.Enrollment, error) {
	return s.filterEnrollments(func(e model.Enrollment) bool { return e.ModuleID == moduleID }), nil
}

func (s *Store) ListEnrollmentsByStudent(_ context.Context, studentID int) ([]model.Enrollment, error) {
	return s.filterEnrollments(func(e model.Enrollment) bool { return e.StudentID == studentID }), nil
}

func (s *Store) EnrollmentExists(_ context.Context, studentID, moduleID int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.enrollments {
		if e.StudentID == studentID && e.ModuleID == moduleID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateEnrollment(_ context.Context, e *model.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[e.StudentID]; !ok {
		return foreignKeyViolation("enrollments_student_id_fkey")
	}
	if _, ok := s.modules[e.ModuleID]; !ok {
		return foreignKeyViolation("enrollments_module_id_fkey")
	}
	for _, existing := range s.enrollments {
		if existing.StudentID == e.StudentID && existing.ModuleID == e.ModuleID {
			return uniqueViolation(repository.ConstraintEnrollmentStudentModule)
		}
	}
	e.ID = s.nextID("enrollments")
	e.CreatedAt = s.now()
	s.enrollments[e.ID] = *e
	return nil
}

func (s *Store) DeleteEnrollment(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enrollments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.enrollments, id)
	return nil
}

func (s *Store) filterEnrollments(keep func(model.Enrollment) bool) []model.Enrollment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Enrollment{}
	for _, e := range s.enrollments {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
