package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/uniflow/uniflow-backend/internal/config"
	"github.com/uniflow/uniflow-backend/internal/lock"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/repository"
)

// Request states logged by the write orchestrators.
const (
	stateReceived     = "received"
	statePreValidated = "pre_validated"
	statePersisted    = "persisted"
	stateRejected     = "rejected"
)

// Locker serializes check-then-write sequences on the given keys.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (lock.Unlock, error)
}

// SessionService is the scheduling write orchestrator. A request moves from
// received to pre_validated to persisted, or to rejected at any step. It
// never retries.
type SessionService struct {
	store     TimetableStore
	validator *ConflictValidator
	locker    Locker
	events    EventBus
	log       zerolog.Logger
	now       func() time.Time
}

// NewSessionService creates a new SessionService. A nil locker disables
// locking; a nil event bus disables publishing.
func NewSessionService(store TimetableStore, validator *ConflictValidator, locker Locker, events EventBus, log zerolog.Logger) *SessionService {
	if locker == nil {
		locker = lock.Nop{}
	}
	return &SessionService{
		store:     store,
		validator: validator,
		locker:    locker,
		events:    events,
		log:       log.With().Str("component", "session_service").Logger(),
		now:       time.Now,
	}
}

// sessionRefs holds the resolved references of one request.
type sessionRefs struct {
	module   *model.Module
	teacher  *model.Teacher
	group    *model.Group
	room     *model.Room
	timeslot *model.Timeslot
}

// Create validates and persists a new session.
func (s *SessionService) Create(ctx context.Context, req model.SessionRequest) (*model.Session, error) {
	log := s.requestLog("create", 0, req)
	log.Debug().Str("state", stateReceived).Msg("Session request")

	if !req.Type.Valid() {
		return nil, reject(log, ErrInvalidSessionType)
	}
	refs, err := s.resolve(ctx, req.ModuleID, req.TeacherID, req.GroupID, req.RoomID, req.TimeslotID)
	if err != nil {
		return nil, reject(log, err)
	}

	unlock, err := s.lockTimeslots(ctx, log, req.TimeslotID)
	if err != nil {
		return nil, reject(log, err)
	}
	defer unlock()

	a := model.Assignment{TeacherID: req.TeacherID, GroupID: req.GroupID, RoomID: req.RoomID, TimeslotID: req.TimeslotID}
	if err := s.validator.ValidateForCreate(ctx, a); err != nil {
		return nil, reject(log, err)
	}
	log.Debug().Str("state", statePreValidated).Msg("Session request")

	sess := &model.Session{
		Type:       req.Type,
		ModuleID:   req.ModuleID,
		TeacherID:  req.TeacherID,
		GroupID:    req.GroupID,
		RoomID:     req.RoomID,
		TimeslotID: req.TimeslotID,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, reject(log, translateSessionWrite("create session", err, refs))
	}

	log.Info().Str("state", statePersisted).Int("session_id", sess.ID).Msg("Session request")
	s.publish(ctx, model.TimetableEvent{
		Type:        model.EventSessionCreated,
		SessionID:   sess.ID,
		TimeslotIDs: []int{sess.TimeslotID},
		Session:     sess,
	})
	return sess, nil
}

// Update re-validates and persists a session's new assignment. The session
// being updated never conflicts with itself.
func (s *SessionService) Update(ctx context.Context, id int, req model.SessionRequest) (*model.Session, error) {
	log := s.requestLog("update", id, req)
	log.Debug().Str("state", stateReceived).Msg("Session request")

	if !req.Type.Valid() {
		return nil, reject(log, ErrInvalidSessionType)
	}
	current, err := lookup(ctx, "session", id, s.store.GetSession)
	if err != nil {
		return nil, reject(log, err)
	}
	refs, err := s.resolve(ctx, req.ModuleID, req.TeacherID, req.GroupID, req.RoomID, req.TimeslotID)
	if err != nil {
		return nil, reject(log, err)
	}

	unlock, err := s.lockTimeslots(ctx, log, current.TimeslotID, req.TimeslotID)
	if err != nil {
		return nil, reject(log, err)
	}
	defer unlock()

	a := model.Assignment{TeacherID: req.TeacherID, GroupID: req.GroupID, RoomID: req.RoomID, TimeslotID: req.TimeslotID}
	if err := s.validator.ValidateForUpdate(ctx, id, a); err != nil {
		return nil, reject(log, err)
	}
	log.Debug().Str("state", statePreValidated).Msg("Session request")

	sess := &model.Session{
		ID:         id,
		Type:       req.Type,
		ModuleID:   req.ModuleID,
		TeacherID:  req.TeacherID,
		GroupID:    req.GroupID,
		RoomID:     req.RoomID,
		TimeslotID: req.TimeslotID,
		CreatedAt:  current.CreatedAt,
	}
	if err := s.store.UpdateSession(ctx, sess); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, reject(log, &ReferenceNotFoundError{Entity: "session", ID: id})
		}
		return nil, reject(log, translateSessionWrite("update session", err, refs))
	}

	log.Info().Str("state", statePersisted).Msg("Session request")
	s.publish(ctx, model.TimetableEvent{
		Type:        model.EventSessionUpdated,
		SessionID:   id,
		TimeslotIDs: distinctInts(current.TimeslotID, sess.TimeslotID),
		Session:     sess,
	})
	return sess, nil
}

// Delete removes a session. Remaining sessions are not re-checked.
func (s *SessionService) Delete(ctx context.Context, id int) error {
	current, err := lookup(ctx, "session", id, s.store.GetSession)
	if err != nil {
		return err
	}

	unlock, err := s.lockTimeslots(ctx, s.log, current.TimeslotID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.store.DeleteSession(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ReferenceNotFoundError{Entity: "session", ID: id}
		}
		return storeFailure("delete session", err)
	}

	s.log.Info().Int("session_id", id).Msg("Session deleted")
	s.publish(ctx, model.TimetableEvent{
		Type:        model.EventSessionDeleted,
		SessionID:   id,
		TimeslotIDs: []int{current.TimeslotID},
	})
	return nil
}

// Validate is a dry run of the admission checks; nothing is written.
func (s *SessionService) Validate(ctx context.Context, req model.ValidateSessionRequest) error {
	if req.ExcludeSessionID != 0 {
		if _, err := lookup(ctx, "session", req.ExcludeSessionID, s.store.GetSession); err != nil {
			return err
		}
	}
	if _, err := lookup(ctx, "teacher", req.TeacherID, s.store.GetTeacher); err != nil {
		return err
	}
	if _, err := lookup(ctx, "group", req.GroupID, s.store.GetGroup); err != nil {
		return err
	}
	if _, err := lookup(ctx, "room", req.RoomID, s.store.GetRoom); err != nil {
		return err
	}
	if _, err := lookup(ctx, "timeslot", req.TimeslotID, s.store.GetTimeslot); err != nil {
		return err
	}

	a := model.Assignment{TeacherID: req.TeacherID, GroupID: req.GroupID, RoomID: req.RoomID, TimeslotID: req.TimeslotID}
	if req.ExcludeSessionID != 0 {
		return s.validator.ValidateForUpdate(ctx, req.ExcludeSessionID, a)
	}
	return s.validator.ValidateForCreate(ctx, a)
}

// Get retrieves a session by ID.
func (s *SessionService) Get(ctx context.Context, id int) (*model.Session, error) {
	return lookup(ctx, "session", id, s.store.GetSession)
}

// List retrieves all sessions.
func (s *SessionService) List(ctx context.Context) ([]model.Session, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, storeFailure("list sessions", err)
	}
	return sessions, nil
}

// ListByGroup retrieves a group's weekly timetable.
func (s *SessionService) ListByGroup(ctx context.Context, groupID int) ([]model.Session, error) {
	if _, err := lookup(ctx, "group", groupID, s.store.GetGroup); err != nil {
		return nil, err
	}
	sessions, err := s.store.ListSessionsByGroup(ctx, groupID)
	if err != nil {
		return nil, storeFailure("list sessions by group", err)
	}
	return sessions, nil
}

// ListByTeacher retrieves a teacher's weekly timetable.
func (s *SessionService) ListByTeacher(ctx context.Context, teacherID int) ([]model.Session, error) {
	if _, err := lookup(ctx, "teacher", teacherID, s.store.GetTeacher); err != nil {
		return nil, err
	}
	sessions, err := s.store.ListSessionsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, storeFailure("list sessions by teacher", err)
	}
	return sessions, nil
}

// resolve loads all five references; the first missing one rejects the request.
func (s *SessionService) resolve(ctx context.Context, moduleID, teacherID, groupID, roomID, timeslotID int) (*sessionRefs, error) {
	var (
		refs sessionRefs
		err  error
	)
	if refs.module, err = lookup(ctx, "module", moduleID, s.store.GetModule); err != nil {
		return nil, err
	}
	if refs.teacher, err = lookup(ctx, "teacher", teacherID, s.store.GetTeacher); err != nil {
		return nil, err
	}
	if refs.group, err = lookup(ctx, "group", groupID, s.store.GetGroup); err != nil {
		return nil, err
	}
	if refs.room, err = lookup(ctx, "room", roomID, s.store.GetRoom); err != nil {
		return nil, err
	}
	if refs.timeslot, err = lookup(ctx, "timeslot", timeslotID, s.store.GetTimeslot); err != nil {
		return nil, err
	}
	return &refs, nil
}

// lockTimeslots takes the advisory locks for the given timeslots. A wait
// timeout rejects the request as busy; any other lock backend failure is
// logged and the request continues unlocked, with the store constraints as
// the remaining guard.
func (s *SessionService) lockTimeslots(ctx context.Context, log zerolog.Logger, timeslotIDs ...int) (lock.Unlock, error) {
	ids := distinctInts(timeslotIDs...)
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, config.CacheKey.TimeslotLockKey(id))
	}
	return acquire(ctx, s.locker, log, keys)
}

func (s *SessionService) publish(ctx context.Context, ev model.TimetableEvent) {
	publish(ctx, s.events, s.log, s.now, ev)
}

func (s *SessionService) requestLog(op string, id int, req model.SessionRequest) zerolog.Logger {
	c := s.log.With().
		Str("op", op).
		Str("type", string(req.Type)).
		Int("module_id", req.ModuleID).
		Int("teacher_id", req.TeacherID).
		Int("group_id", req.GroupID).
		Int("room_id", req.RoomID).
		Int("timeslot_id", req.TimeslotID)
	if id != 0 {
		c = c.Int("session_id", id)
	}
	return c.Logger()
}

// translateSessionWrite maps a failed write onto the conflict vocabulary by
// the violated constraint's identity. Anything unrecognized is a store failure.
func translateSessionWrite(op string, err error, refs *sessionRefs) error {
	if constraint, ok := repository.AsUniqueViolation(err); ok {
		switch constraint {
		case repository.ConstraintSessionRoomTimeslot:
			return newRoomConflict(refs.room.Name, refs.timeslot)
		case repository.ConstraintSessionTeacherTimeslot:
			return newTeacherConflict(refs.teacher.FullName(), refs.timeslot)
		case repository.ConstraintSessionGroupTimeslot:
			return newGroupConflict(refs.group.Name, refs.timeslot)
		}
	}
	var fk *repository.ForeignKeyViolationError
	if errors.As(err, &fk) {
		if entity, ok := fkEntity(fk.Constraint); ok {
			return &ReferenceNotFoundError{Entity: entity, ID: refs.id(entity)}
		}
	}
	return storeFailure(op, err)
}

// fkEntity extracts "room" from "sessions_room_id_fkey".
func fkEntity(constraint string) (string, bool) {
	name := strings.TrimSuffix(constraint, "_id_fkey")
	if name == constraint {
		return "", false
	}
	if i := strings.LastIndex(name, "_"); i >= 0 {
		name = name[i+1:]
	}
	return name, name != ""
}

func (r *sessionRefs) id(entity string) int {
	switch entity {
	case "module":
		return r.module.ID
	case "teacher":
		return r.teacher.ID
	case "group":
		return r.group.ID
	case "room":
		return r.room.ID
	case "timeslot":
		return r.timeslot.ID
	}
	return 0
}

// ─── Shared orchestration helpers ───────────────────────────────────

func acquire(ctx context.Context, locker Locker, log zerolog.Logger, keys []string) (lock.Unlock, error) {
	unlock, err := locker.Lock(ctx, keys...)
	switch {
	case err == nil:
		return unlock, nil
	case errors.Is(err, lock.ErrTimeout):
		return nil, ErrSchedulingBusy
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		log.Warn().Err(err).Strs("keys", keys).Msg("Advisory lock unavailable, continuing unlocked")
		return func() {}, nil
	}
}

func publish(ctx context.Context, bus EventBus, log zerolog.Logger, now func() time.Time, ev model.TimetableEvent) {
	if bus == nil {
		return
	}
	ev.At = now().UTC()
	if err := bus.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", string(ev.Type)).Msg("Failed to publish timetable event")
	}
}

func reject(log zerolog.Logger, err error) error {
	kind := KindOf(err)
	evt := log.Info()
	if kind == KindInternalStoreFailure {
		evt = log.Error()
	}
	evt.Str("state", stateRejected).Str("kind", string(kind)).Err(err).Msg("Request rejected")
	return err
}

func distinctInts(ids ...int) []int {
	out := make([]int, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
