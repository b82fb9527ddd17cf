package model

import "time"

// Group is a cohort of students scheduled together. Membership is owned by
// the student record (Student.GroupID).
type Group struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Program   string    `json:"program"`
	Level     string    `json:"level"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupSummary is a group together with its roster size.
type GroupSummary struct {
	Group
	StudentCount int `json:"student_count"`
}
