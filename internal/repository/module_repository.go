package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uniflow/uniflow-backend/internal/model"
)

type ModuleRepository struct {
	pool *pgxpool.Pool
}

func NewModuleRepository(pool *pgxpool.Pool) *ModuleRepository {
	return &ModuleRepository{pool: pool}
}

func (r *ModuleRepository) GetModule(ctx context.Context, id int) (*model.Module, error) {
	m := &model.Module{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, program, semester, volume_hours, responsible_teacher_id, created_at
		 FROM modules WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.Program, &m.Semester, &m.VolumeHours, &m.ResponsibleTeacherID, &m.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

func (r *ModuleRepository) ListModules(ctx context.Context) ([]model.Module, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, program, semester, volume_hours, responsible_teacher_id, created_at
		 FROM modules ORDER BY program, semester, name`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	modules := []model.Module{}
	for rows.Next() {
		var m model.Module
		if err := rows.Scan(&m.ID, &m.Name, &m.Program, &m.Semester, &m.VolumeHours, &m.ResponsibleTeacherID, &m.CreatedAt); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, translate(rows.Err())
}

func (r *ModuleRepository) CreateModule(ctx context.Context, m *model.Module) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO modules (name, program, semester, volume_hours, responsible_teacher_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		m.Name, m.Program, m.Semester, m.VolumeHours, m.ResponsibleTeacherID,
	).Scan(&m.ID, &m.CreatedAt)
	return translate(err)
}
