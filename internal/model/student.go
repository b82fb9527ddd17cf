package model

import "time"

// Student is a learner. GroupID is the authoritative group membership edge.
type Student struct {
	ID        int       `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Program   string    `json:"program"`
	Level     string    `json:"level"`
	GroupID   *int      `json:"group_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName returns "First Last".
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
