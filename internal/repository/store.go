package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Store aggregates the PostgreSQL repositories behind one value so it can be
// handed to services as their timetable store.
type Store struct {
	*SessionRepository
	*EnrollmentRepository
	*RoomRepository
	*TeacherRepository
	*GroupRepository
	*ModuleRepository
	*TimeslotRepository
	*StudentRepository
}

// NewStore wires every repository onto the same pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		SessionRepository:    NewSessionRepository(pool),
		EnrollmentRepository: NewEnrollmentRepository(pool),
		RoomRepository:       NewRoomRepository(pool),
		TeacherRepository:    NewTeacherRepository(pool),
		GroupRepository:      NewGroupRepository(pool),
		ModuleRepository:     NewModuleRepository(pool),
		TimeslotRepository:   NewTimeslotRepository(pool),
		StudentRepository:    NewStudentRepository(pool),
	}
}
