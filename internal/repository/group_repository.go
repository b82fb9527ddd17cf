package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uniflow/uniflow-backend/internal/model"
)

// GroupRepository handles group data access.
type GroupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

// GetGroup retrieves a group by its ID.
func (r *GroupRepository) GetGroup(ctx context.Context, id int) (*model.Group, error) {
	g := &model.Group{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, program, level, created_at FROM groups WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.Program, &g.Level, &g.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return g, nil
}

// ListGroups retrieves all groups with their roster size.
func (r *GroupRepository) ListGroups(ctx context.Context) ([]model.GroupSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT g.id, g.name, g.program, g.level, g.created_at, COUNT(st.id)
		 FROM groups g
		 LEFT JOIN students st ON st.group_id = g.id
		 GROUP BY g.id
		 ORDER BY g.program, g.level, g.name`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	groups := []model.GroupSummary{}
	for rows.Next() {
		var g model.GroupSummary
		if err := rows.Scan(&g.ID, &g.Name, &g.Program, &g.Level, &g.CreatedAt, &g.StudentCount); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, translate(rows.Err())
}

// CreateGroup inserts a new group.
func (r *GroupRepository) CreateGroup(ctx context.Context, g *model.Group) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO groups (name, program, level) VALUES ($1, $2, $3) RETURNING id, created_at`,
		g.Name, g.Program, g.Level,
	).Scan(&g.ID, &g.CreatedAt)
	return translate(err)
}
