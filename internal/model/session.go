package model

import "time"

// SessionType enumerates the kinds of teaching session. The set is closed.
type SessionType string

const (
	SessionTypeLecture   SessionType = "LECTURE"
	SessionTypeTutorial  SessionType = "TUTORIAL"
	SessionTypePractical SessionType = "PRACTICAL"
)

// SessionTypes lists every valid session type in display order.
var SessionTypes = []SessionType{SessionTypeLecture, SessionTypeTutorial, SessionTypePractical}

// Valid reports whether t belongs to the closed set of session types.
func (t SessionType) Valid() bool {
	for _, v := range SessionTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Session is one scheduled occurrence of a module for a group, taught by a
// teacher, in a room, at a timeslot. All five references are required.
type Session struct {
	ID         int         `json:"id"`
	Type       SessionType `json:"type"`
	ModuleID   int         `json:"module_id"`
	TeacherID  int         `json:"teacher_id"`
	GroupID    int         `json:"group_id"`
	RoomID     int         `json:"room_id"`
	TimeslotID int         `json:"timeslot_id"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Assignment is the (teacher, group, room, timeslot) tuple the validator checks.
type Assignment struct {
	TeacherID  int `json:"teacher_id"`
	GroupID    int `json:"group_id"`
	RoomID     int `json:"room_id"`
	TimeslotID int `json:"timeslot_id"`
}

// Assignment returns the resource tuple currently held by the session.
func (s *Session) Assignment() Assignment {
	return Assignment{
		TeacherID:  s.TeacherID,
		GroupID:    s.GroupID,
		RoomID:     s.RoomID,
		TimeslotID: s.TimeslotID,
	}
}

// SessionRequest is the payload for creating or updating a session.
type SessionRequest struct {
	Type       SessionType `json:"type" binding:"required,session_type"`
	ModuleID   int         `json:"module_id" binding:"required,min=1"`
	TeacherID  int         `json:"teacher_id" binding:"required,min=1"`
	GroupID    int         `json:"group_id" binding:"required,min=1"`
	RoomID     int         `json:"room_id" binding:"required,min=1"`
	TimeslotID int         `json:"timeslot_id" binding:"required,min=1"`
}

// ValidateSessionRequest is the payload for a dry-run admission check.
// ExcludeSessionID is set when checking a prospective update.
type ValidateSessionRequest struct {
	TeacherID        int `json:"teacher_id" binding:"required,min=1"`
	GroupID          int `json:"group_id" binding:"required,min=1"`
	RoomID           int `json:"room_id" binding:"required,min=1"`
	TimeslotID       int `json:"timeslot_id" binding:"required,min=1"`
	ExcludeSessionID int `json:"exclude_session_id" binding:"omitempty,min=1"`
}
