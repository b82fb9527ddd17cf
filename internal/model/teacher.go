package model

import "time"

// Teacher is a member of staff who can teach sessions.
type Teacher struct {
	ID        int       `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Specialty *string   `json:"specialty,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName returns "First Last".
func (t *Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}
