package model

import "time"

// EventType names a timetable change pushed to subscribers.
type EventType string

const (
	EventSessionCreated    EventType = "session_created"
	EventSessionUpdated    EventType = "session_updated"
	EventSessionDeleted    EventType = "session_deleted"
	EventEnrollmentCreated EventType = "enrollment_created"
	EventEnrollmentDeleted EventType = "enrollment_deleted"
	EventAuditCompleted    EventType = "audit_completed"
)

// TimetableEvent is published after every successful write and audit.
type TimetableEvent struct {
	Type         EventType   `json:"type"`
	SessionID    int         `json:"session_id,omitempty"`
	EnrollmentID int         `json:"enrollment_id,omitempty"`
	TimeslotIDs  []int       `json:"timeslot_ids,omitempty"`
	Session      *Session    `json:"session,omitempty"`
	Enrollment   *Enrollment `json:"enrollment,omitempty"`
	HasConflicts *bool       `json:"has_conflicts,omitempty"`
	At           time.Time   `json:"at"`
}
