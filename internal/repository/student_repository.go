package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uniflow/uniflow-backend/internal/model"
)

const studentColumns = `id, first_name, last_name, program, level, group_id, created_at`

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetStudent retrieves a student by ID.
func (r *StudentRepository) GetStudent(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.FirstName, &s.LastName, &s.Program, &s.Level, &s.GroupID, &s.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

// ListStudentsByGroup retrieves a group's roster.
func (r *StudentRepository) ListStudentsByGroup(ctx context.Context, groupID int) ([]model.Student, error) {
	return r.list(ctx, `SELECT `+studentColumns+` FROM students WHERE group_id = $1 ORDER BY id`, groupID)
}

// ListStudentsByIDs retrieves the given students ordered by ID.
func (r *StudentRepository) ListStudentsByIDs(ctx context.Context, ids []int) ([]model.Student, error) {
	if len(ids) == 0 {
		return []model.Student{}, nil
	}
	return r.list(ctx, `SELECT `+studentColumns+` FROM students WHERE id = ANY($1) ORDER BY id`, ids)
}

// CreateStudent inserts a new student.
func (r *StudentRepository) CreateStudent(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (first_name, last_name, program, level, group_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		s.FirstName, s.LastName, s.Program, s.Level, s.GroupID,
	).Scan(&s.ID, &s.CreatedAt)
	return translate(err)
}

func (r *StudentRepository) list(ctx context.Context, sql string, args ...interface{}) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Program, &s.Level, &s.GroupID, &s.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, translate(rows.Err())
}
