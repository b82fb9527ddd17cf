package model

import "time"

// Module is a taught course unit.
type Module struct {
	ID                   int       `json:"id"`
	Name                 string    `json:"name"`
	Program              string    `json:"program"`
	Semester             int       `json:"semester"`
	VolumeHours          int       `json:"volume_hours"`
	ResponsibleTeacherID *int      `json:"responsible_teacher_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}
