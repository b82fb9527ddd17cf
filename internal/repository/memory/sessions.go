package memory

import (
	"context"
	"sort"

	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/repository"
)

func (s *Store) GetSession(_ context.Context, id int) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sess, nil
}

func (s *Store) ListSessions(_ context.Context) ([]model.Session, error) {
	return s.filterSessions(func(model.Session) bool { return true }), nil
}

func (s *Store) ListSessionsByTeacherAndTimeslot(_ context.Context, teacherID, timeslotID int) ([]model.Session, error) {
	return s.filterSessions(func(x model.Session) bool {
		return x.TeacherID == teacherID && x.TimeslotID == timeslotID
	}), nil
}

func (s *Store) ListSessionsByGroupAndTimeslot(_ context.Context, groupID, timeslotID int) ([]model.Session, error) {
	return s.filterSessions(func(x model.Session) bool {
		return x.GroupID == groupID && x.TimeslotID == timeslotID
	}), nil
}

func (s *Store) ListSessionsByRoomAndTimeslot(_ context.Context, roomID, timeslotID int) ([]model.Session, error) {
	return s.filterSessions(func(x model.Session) bool {
		return x.RoomID == roomID && x.TimeslotID == timeslotID
	}), nil
}

func (s *Store) ListSessionsByModule(_ context.Context, moduleID int) ([]model.Session, error) {
	return s.filterSessions(func(x model.Session) bool { return x.ModuleID == moduleID }), nil
}

func (s *Store) ListSessionsByTimeslot(_ context.Context, timeslotID int) ([]model.Session, error) {
	return s.filterSessions(func(x model.Session) bool { return x.TimeslotID == timeslotID }), nil
}

func (s *Store) ListSessionsByGroup(_ context.Context, groupID int) ([]model.Session, error) {
	return s.chronological(s.filterSessions(func(x model.Session) bool { return x.GroupID == groupID })), nil
}

func (s *Store) ListSessionsByTeacher(_ context.Context, teacherID int) ([]model.Session, error) {
	return s.chronological(s.filterSessions(func(x model.Session) bool { return x.TeacherID == teacherID })), nil
}

// CreateSession checks references and the three (resource, timeslot)
// uniqueness constraints, then inserts atomically.
func (s *Store) CreateSession(_ context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSession(sess); err != nil {
		return err
	}
	now := s.now()
	sess.ID = s.nextID("sessions")
	sess.CreatedAt = now
	sess.UpdatedAt = now
	s.sessions[sess.ID] = *sess
	return nil
}

// UpdateSession replaces the session's type and references atomically.
func (s *Store) UpdateSession(_ context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[sess.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := s.checkSession(sess); err != nil {
		return err
	}
	sess.CreatedAt = current.CreatedAt
	sess.UpdatedAt = s.now()
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *Store) DeleteSession(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// checkSession must be called with the write lock held. Constraints are
// evaluated in schema declaration order.
func (s *Store) checkSession(sess *model.Session) error {
	if _, ok := s.modules[sess.ModuleID]; !ok {
		return foreignKeyViolation("sessions_module_id_fkey")
	}
	if _, ok := s.teachers[sess.TeacherID]; !ok {
		return foreignKeyViolation("sessions_teacher_id_fkey")
	}
	if _, ok := s.groups[sess.GroupID]; !ok {
		return foreignKeyViolation("sessions_group_id_fkey")
	}
	if _, ok := s.rooms[sess.RoomID]; !ok {
		return foreignKeyViolation("sessions_room_id_fkey")
	}
	if _, ok := s.timeslots[sess.TimeslotID]; !ok {
		return foreignKeyViolation("sessions_timeslot_id_fkey")
	}
	for id, other := range s.sessions {
		if id == sess.ID || other.TimeslotID != sess.TimeslotID {
			continue
		}
		switch {
		case other.RoomID == sess.RoomID:
			return uniqueViolation(repository.ConstraintSessionRoomTimeslot)
		case other.TeacherID == sess.TeacherID:
			return uniqueViolation(repository.ConstraintSessionTeacherTimeslot)
		case other.GroupID == sess.GroupID:
			return uniqueViolation(repository.ConstraintSessionGroupTimeslot)
		}
	}
	return nil
}

func (s *Store) filterSessions(keep func(model.Session) bool) []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Session{}
	for _, sess := range s.sessions {
		if keep(sess) {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) chronological(sessions []model.Session) []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sort.SliceStable(sessions, func(i, j int) bool {
		return timeslotLess(s.timeslots[sessions[i].TimeslotID], s.timeslots[sessions[j].TimeslotID])
	})
	return sessions
}
