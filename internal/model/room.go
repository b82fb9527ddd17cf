package model

import "time"

// Room is a bookable teaching space.
type Room struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Type      *string   `json:"type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
