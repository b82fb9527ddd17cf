package model

import "time"

// Enrollment registers a student in a module. At most one per (student, module).
type Enrollment struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	ModuleID  int       `json:"module_id"`
	CreatedAt time.Time `json:"created_at"`
}

// EnrollRequest is the payload for enrolling a student in a module.
type EnrollRequest struct {
	StudentID int `json:"student_id" binding:"required,min=1"`
	ModuleID  int `json:"module_id" binding:"required,min=1"`
}
