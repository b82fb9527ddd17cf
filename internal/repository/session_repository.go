package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uniflow/uniflow-backend/internal/model"
)

const sessionColumns = `s.id, s.type::text, s.module_id, s.teacher_id, s.group_id, s.room_id, s.timeslot_id, s.created_at, s.updated_at`

// dayOrder sorts sessions chronologically within the week.
const dayOrder = `array_position(ARRAY['MONDAY','TUESDAY','WEDNESDAY','THURSDAY','FRIDAY','SATURDAY','SUNDAY']::text[], t.day_of_week)`

// SessionRepository handles session data access. Every query is an explicit,
// id-keyed lookup; nothing is loaded implicitly.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// GetSession retrieves a session by its ID.
func (r *SessionRepository) GetSession(ctx context.Context, id int) (*model.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions s WHERE s.id = $1`, id)
	if err != nil {
		return nil, translate(err)
	}
	sessions, err := collectSessions(rows)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNotFound
	}
	return &sessions[0], nil
}

// ListSessions retrieves every session ordered by ID.
func (r *SessionRepository) ListSessions(ctx context.Context) ([]model.Session, error) {
	return r.query(ctx, `SELECT `+sessionColumns+` FROM sessions s ORDER BY s.id`)
}

// ListSessionsByTeacherAndTimeslot retrieves the sessions a teacher holds at a timeslot.
func (r *SessionRepository) ListSessionsByTeacherAndTimeslot(ctx context.Context, teacherID, timeslotID int) ([]model.Session, error) {
	return r.query(ctx,
		`SELECT `+sessionColumns+` FROM sessions s
		 WHERE s.teacher_id = $1 AND s.timeslot_id = $2 ORDER BY s.id`,
		teacherID, timeslotID)
}

// ListSessionsByGroupAndTimeslot retrieves the sessions a group attends at a timeslot.
func (r *SessionRepository) ListSessionsByGroupAndTimeslot(ctx context.Context, groupID, timeslotID int) ([]model.Session, error) {
	return r.query(ctx,
		`SELECT `+sessionColumns+` FROM sessions s
		 WHERE s.group_id = $1 AND s.timeslot_id = $2 ORDER BY s.id`,
		groupID, timeslotID)
}

// ListSessionsByRoomAndTimeslot retrieves the sessions booked in a room at a timeslot.
func (r *SessionRepository) ListSessionsByRoomAndTimeslot(ctx context.Context, roomID, timeslotID int) ([]model.Session, error) {
	return r.query(ctx,
		`SELECT `+sessionColumns+` FROM sessions s
		 WHERE s.room_id = $1 AND s.timeslot_id = $2 ORDER BY s.id`,
		roomID, timeslotID)
}

// ListSessionsByModule retrieves all sessions of a module.
func (r *SessionRepository) ListSessionsByModule(ctx context.Context, moduleID int) ([]model.Session, error) {
	return r.query(ctx,
		`SELECT `+sessionColumns+` FROM sessions s WHERE s.module_id = $1 ORDER BY s.id`, moduleID)
}

// ListSessionsByTimeslot retrieves all sessions at a timeslot.
func (r *SessionRepository) ListSessionsByTimeslot(ctx context.Context, timeslotID int) ([]model.Session, error) {
	return r.query(ctx,
		`SELECT `+sessionColumns+` FROM sessions s WHERE s.timeslot_id = $1 ORDER BY s.id`, timeslotID)
}

// ListSessionsByGroup retrieves a group's weekly timetable in chronological order.
func (r *SessionRepository) ListSessionsByGroup(ctx context.Context, groupID int) ([]model.Session, error) {
	return r.query(ctx,
		`SELECT `+sessionColumns+` FROM sessions s
		 JOIN timeslots t ON t.id = s.timeslot_id
		 WHERE s.group_id = $1
		 ORDER BY `+dayOrder+`, t.start_time, s.id`, groupID)
}

// ListSessionsByTeacher retrieves a teacher's weekly timetable in chronological order.
func (r *SessionRepository) ListSessionsByTeacher(ctx context.Context, teacherID int) ([]model.Session, error) {
	return r.query(ctx,
		`SELECT `+sessionColumns+` FROM sessions s
		 JOIN timeslots t ON t.id = s.timeslot_id
		 WHERE s.teacher_id = $1
		 ORDER BY `+dayOrder+`, t.start_time, s.id`, teacherID)
}

// CreateSession inserts a session in a single statement. A clash on one of the
// session uniqueness constraints surfaces as *UniqueViolationError.
func (r *SessionRepository) CreateSession(ctx context.Context, s *model.Session) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sessions (type, module_id, teacher_id, group_id, room_id, timeslot_id)
		 VALUES ($1::session_type, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		string(s.Type), s.ModuleID, s.TeacherID, s.GroupID, s.RoomID, s.TimeslotID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return translate(err)
}

// UpdateSession rewrites all five references and the type of an existing session.
func (r *SessionRepository) UpdateSession(ctx context.Context, s *model.Session) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE sessions
		 SET type = $1::session_type, module_id = $2, teacher_id = $3, group_id = $4,
		     room_id = $5, timeslot_id = $6, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $7
		 RETURNING created_at, updated_at`,
		string(s.Type), s.ModuleID, s.TeacherID, s.GroupID, s.RoomID, s.TimeslotID, s.ID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return translate(err)
}

// DeleteSession removes a session by its ID.
func (r *SessionRepository) DeleteSession(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SessionRepository) query(ctx context.Context, sql string, args ...interface{}) ([]model.Session, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err)
	}
	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]model.Session, error) {
	defer rows.Close()

	sessions := []model.Session{}
	for rows.Next() {
		var s model.Session
		var sessionType string
		if err := rows.Scan(&s.ID, &sessionType, &s.ModuleID, &s.TeacherID, &s.GroupID,
			&s.RoomID, &s.TimeslotID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Type = model.SessionType(sessionType)
		sessions = append(sessions, s)
	}
	return sessions, translate(rows.Err())
}
