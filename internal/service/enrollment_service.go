package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/uniflow/uniflow-backend/internal/config"
	"github.com/uniflow/uniflow-backend/internal/lock"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/repository"
)

// EnrollmentService registers students in modules, refusing enrollments
// that would put the student in two sessions at once.
type EnrollmentService struct {
	store     TimetableStore
	validator *ConflictValidator
	locker    Locker
	events    EventBus
	log       zerolog.Logger
	now       func() time.Time
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(store TimetableStore, validator *ConflictValidator, locker Locker, events EventBus, log zerolog.Logger) *EnrollmentService {
	if locker == nil {
		locker = lock.Nop{}
	}
	return &EnrollmentService{
		store:     store,
		validator: validator,
		locker:    locker,
		events:    events,
		log:       log.With().Str("component", "enrollment_service").Logger(),
		now:       time.Now,
	}
}

// Enroll adds the student to the module.
func (s *EnrollmentService) Enroll(ctx context.Context, req model.EnrollRequest) (*model.Enrollment, error) {
	log := s.log.With().Str("op", "enroll").Int("student_id", req.StudentID).Int("module_id", req.ModuleID).Logger()
	log.Debug().Str("state", stateReceived).Msg("Enrollment request")

	if _, err := lookup(ctx, "student", req.StudentID, s.store.GetStudent); err != nil {
		return nil, reject(log, err)
	}
	if _, err := lookup(ctx, "module", req.ModuleID, s.store.GetModule); err != nil {
		return nil, reject(log, err)
	}

	unlock, err := acquire(ctx, s.locker, log, []string{config.CacheKey.StudentLockKey(req.StudentID)})
	if err != nil {
		return nil, reject(log, err)
	}
	defer unlock()

	exists, err := s.store.EnrollmentExists(ctx, req.StudentID, req.ModuleID)
	if err != nil {
		return nil, reject(log, storeFailure("check enrollment", err))
	}
	if exists {
		return nil, reject(log, ErrAlreadyEnrolled)
	}
	if err := s.validator.CheckEnrollmentOverlap(ctx, req.StudentID, req.ModuleID); err != nil {
		return nil, reject(log, err)
	}
	log.Debug().Str("state", statePreValidated).Msg("Enrollment request")

	e := &model.Enrollment{StudentID: req.StudentID, ModuleID: req.ModuleID}
	if err := s.store.CreateEnrollment(ctx, e); err != nil {
		if constraint, ok := repository.AsUniqueViolation(err); ok && constraint == repository.ConstraintEnrollmentStudentModule {
			return nil, reject(log, ErrAlreadyEnrolled)
		}
		return nil, reject(log, storeFailure("create enrollment", err))
	}

	log.Info().Str("state", statePersisted).Int("enrollment_id", e.ID).Msg("Enrollment request")
	publish(ctx, s.events, s.log, s.now, model.TimetableEvent{
		Type:         model.EventEnrollmentCreated,
		EnrollmentID: e.ID,
		Enrollment:   e,
	})
	return e, nil
}

// Delete removes an enrollment.
func (s *EnrollmentService) Delete(ctx context.Context, id int) error {
	e, err := lookup(ctx, "enrollment", id, s.store.GetEnrollment)
	if err != nil {
		return err
	}

	unlock, err := acquire(ctx, s.locker, s.log, []string{config.CacheKey.StudentLockKey(e.StudentID)})
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.store.DeleteEnrollment(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ReferenceNotFoundError{Entity: "enrollment", ID: id}
		}
		return storeFailure("delete enrollment", err)
	}

	s.log.Info().Int("enrollment_id", id).Msg("Enrollment deleted")
	publish(ctx, s.events, s.log, s.now, model.TimetableEvent{
		Type:         model.EventEnrollmentDeleted,
		EnrollmentID: id,
		Enrollment:   e,
	})
	return nil
}

// ListByStudent retrieves a student's enrollments.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID int) ([]model.Enrollment, error) {
	if _, err := lookup(ctx, "student", studentID, s.store.GetStudent); err != nil {
		return nil, err
	}
	enrollments, err := s.store.ListEnrollmentsByStudent(ctx, studentID)
	if err != nil {
		return nil, storeFailure("list enrollments by student", err)
	}
	return enrollments, nil
}

// ListByModule retrieves a module's enrollments.
func (s *EnrollmentService) ListByModule(ctx context.Context, moduleID int) ([]model.Enrollment, error) {
	if _, err := lookup(ctx, "module", moduleID, s.store.GetModule); err != nil {
		return nil, err
	}
	enrollments, err := s.store.ListEnrollmentsByModule(ctx, moduleID)
	if err != nil {
		return nil, storeFailure("list enrollments by module", err)
	}
	return enrollments, nil
}
