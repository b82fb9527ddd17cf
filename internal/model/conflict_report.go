package model

import "time"

// ConflictReport is the outcome of a full timetable audit. Each list keeps
// discovery order.
type ConflictReport struct {
	RoomConflicts    []string  `json:"room_conflicts"`
	TeacherConflicts []string  `json:"teacher_conflicts"`
	StudentConflicts []string  `json:"student_conflicts"`
	SessionsScanned  int       `json:"sessions_scanned"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// NewConflictReport returns an empty report with non-nil lists.
func NewConflictReport() *ConflictReport {
	return &ConflictReport{
		RoomConflicts:    []string{},
		TeacherConflicts: []string{},
		StudentConflicts: []string{},
	}
}

// HasConflicts reports whether any of the three lists is non-empty.
func (r *ConflictReport) HasConflicts() bool {
	return len(r.RoomConflicts) > 0 || len(r.TeacherConflicts) > 0 || len(r.StudentConflicts) > 0
}

// ConflictReportView is the JSON shape served to clients.
type ConflictReportView struct {
	*ConflictReport
	HasConflicts bool `json:"has_conflicts"`
}

// View wraps the report with its computed summary flag.
func (r *ConflictReport) View() ConflictReportView {
	return ConflictReportView{ConflictReport: r, HasConflicts: r.HasConflicts()}
}
