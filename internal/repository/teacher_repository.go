package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uniflow/uniflow-backend/internal/model"
)

// TeacherRepository handles teacher data access.
type TeacherRepository struct {
	pool *pgxpool.Pool
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(pool *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{pool: pool}
}

// GetTeacher retrieves a teacher by ID.
func (r *TeacherRepository) GetTeacher(ctx context.Context, id int) (*model.Teacher, error) {
	t := &model.Teacher{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, specialty, created_at FROM teachers WHERE id = $1`, id,
	).Scan(&t.ID, &t.FirstName, &t.LastName, &t.Specialty, &t.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

// ListTeachers retrieves all teachers ordered by name.
func (r *TeacherRepository) ListTeachers(ctx context.Context) ([]model.Teacher, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, first_name, last_name, specialty, created_at FROM teachers ORDER BY last_name, first_name`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	teachers := []model.Teacher{}
	for rows.Next() {
		var t model.Teacher
		if err := rows.Scan(&t.ID, &t.FirstName, &t.LastName, &t.Specialty, &t.CreatedAt); err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, translate(rows.Err())
}

// CreateTeacher inserts a new teacher.
func (r *TeacherRepository) CreateTeacher(ctx context.Context, t *model.Teacher) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO teachers (first_name, last_name, specialty) VALUES ($1, $2, $3) RETURNING id, created_at`,
		t.FirstName, t.LastName, t.Specialty,
	).Scan(&t.ID, &t.CreatedAt)
	return translate(err)
}
