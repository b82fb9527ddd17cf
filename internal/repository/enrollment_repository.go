package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uniflow/uniflow-backend/internal/model"
)

// EnrollmentRepository handles enrollment data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// GetEnrollment retrieves an enrollment by its ID.
func (r *EnrollmentRepository) GetEnrollment(ctx context.Context, id int) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, student_id, module_id, created_at FROM enrollments WHERE id = $1`, id,
	).Scan(&e.ID, &e.StudentID, &e.ModuleID, &e.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return e, nil
}

// ListEnrollmentsByModule retrieves every enrollment in a module.
func (r *EnrollmentRepository) ListEnrollmentsByModule(ctx context.Context, moduleID int) ([]model.Enrollment, error) {
	return r.list(ctx,
		`SELECT id, student_id, module_id, created_at FROM enrollments WHERE module_id = $1 ORDER BY id`, moduleID)
}

// ListEnrollmentsByStudent retrieves every enrollment of a student.
func (r *EnrollmentRepository) ListEnrollmentsByStudent(ctx context.Context, studentID int) ([]model.Enrollment, error) {
	return r.list(ctx,
		`SELECT id, student_id, module_id, created_at FROM enrollments WHERE student_id = $1 ORDER BY id`, studentID)
}

// EnrollmentExists reports whether the student is already enrolled in the module.
func (r *EnrollmentRepository) EnrollmentExists(ctx context.Context, studentID, moduleID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND module_id = $2)`,
		studentID, moduleID,
	).Scan(&exists)
	return exists, translate(err)
}

// CreateEnrollment inserts a new enrollment.
func (r *EnrollmentRepository) CreateEnrollment(ctx context.Context, e *model.Enrollment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO enrollments (student_id, module_id) VALUES ($1, $2)
		 RETURNING id, created_at`,
		e.StudentID, e.ModuleID,
	).Scan(&e.ID, &e.CreatedAt)
	return translate(err)
}

// DeleteEnrollment removes an enrollment by its ID.
func (r *EnrollmentRepository) DeleteEnrollment(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EnrollmentRepository) list(ctx context.Context, sql string, args ...interface{}) ([]model.Enrollment, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	enrollments := []model.Enrollment{}
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.StudentID, &e.ModuleID, &e.CreatedAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, translate(rows.Err())
}
