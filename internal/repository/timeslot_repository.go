package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uniflow/uniflow-backend/internal/model"
)

const timeslotColumns = `t.id, t.day_of_week, to_char(t.start_time, 'HH24:MI'), to_char(t.end_time, 'HH24:MI'), t.created_at`

// TimeslotRepository handles timeslot data access.
type TimeslotRepository struct {
	pool *pgxpool.Pool
}

// NewTimeslotRepository creates a new TimeslotRepository.
func NewTimeslotRepository(pool *pgxpool.Pool) *TimeslotRepository {
	return &TimeslotRepository{pool: pool}
}

// GetTimeslot retrieves a timeslot by its ID.
func (r *TimeslotRepository) GetTimeslot(ctx context.Context, id int) (*model.Timeslot, error) {
	t := &model.Timeslot{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+timeslotColumns+` FROM timeslots t WHERE t.id = $1`, id,
	).Scan(&t.ID, &t.DayOfWeek, &t.StartTime, &t.EndTime, &t.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

// ListTimeslots retrieves all timeslots in week order.
func (r *TimeslotRepository) ListTimeslots(ctx context.Context) ([]model.Timeslot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+timeslotColumns+` FROM timeslots t ORDER BY `+dayOrder+`, t.start_time`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	slots := []model.Timeslot{}
	for rows.Next() {
		var t model.Timeslot
		if err := rows.Scan(&t.ID, &t.DayOfWeek, &t.StartTime, &t.EndTime, &t.CreatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, t)
	}
	return slots, translate(rows.Err())
}

// CreateTimeslot normalizes, validates and inserts a timeslot.
// The table also carries CHECK (start_time < end_time).
func (r *TimeslotRepository) CreateTimeslot(ctx context.Context, t *model.Timeslot) error {
	t.Normalize()
	if err := t.Validate(); err != nil {
		return err
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO timeslots (day_of_week, start_time, end_time)
		 VALUES ($1, $2::time, $3::time) RETURNING id, created_at`,
		t.DayOfWeek, t.StartTime, t.EndTime,
	).Scan(&t.ID, &t.CreatedAt)
	return translate(err)
}
