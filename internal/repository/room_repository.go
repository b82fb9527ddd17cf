package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uniflow/uniflow-backend/internal/model"
)

// RoomRepository handles room data access.
type RoomRepository struct {
	pool *pgxpool.Pool
}

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// GetRoom retrieves a room by its ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id int) (*model.Room, error) {
	room := &model.Room{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, capacity, type, created_at FROM rooms WHERE id = $1`, id,
	).Scan(&room.ID, &room.Name, &room.Capacity, &room.Type, &room.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return room, nil
}

// ListRooms retrieves all rooms ordered by name.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, capacity, type, created_at FROM rooms ORDER BY name`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	rooms := []model.Room{}
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.Type, &room.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, translate(rows.Err())
}

// CreateRoom inserts a new room.
func (r *RoomRepository) CreateRoom(ctx context.Context, room *model.Room) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO rooms (name, capacity, type) VALUES ($1, $2, $3) RETURNING id, created_at`,
		room.Name, room.Capacity, room.Type,
	).Scan(&room.ID, &room.CreatedAt)
	return translate(err)
}
