package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeslot_Validate(t *testing.T) {
	tests := []struct {
		name    string
		slot    Timeslot
		wantErr error
	}{
		{name: "valid", slot: Timeslot{DayOfWeek: "MONDAY", StartTime: "08:00", EndTime: "10:00"}},
		{name: "missing day", slot: Timeslot{StartTime: "08:00", EndTime: "10:00"}, wantErr: ErrInvalidDay},
		{name: "equal bounds", slot: Timeslot{DayOfWeek: "MONDAY", StartTime: "10:00", EndTime: "10:00"}, wantErr: ErrTimeslotInverted},
		{name: "inverted", slot: Timeslot{DayOfWeek: "MONDAY", StartTime: "12:00", EndTime: "10:00"}, wantErr: ErrTimeslotInverted},
		{name: "bad clock", slot: Timeslot{DayOfWeek: "MONDAY", StartTime: "8h", EndTime: "10:00"}, wantErr: ErrInvalidClock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.slot.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTimeslot_Descriptor(t *testing.T) {
	slot := Timeslot{DayOfWeek: "monday", StartTime: "08:00", EndTime: "10:00"}
	slot.Normalize()
	assert.Equal(t, "MONDAY", slot.DayOfWeek)
	assert.Equal(t, "MON 08:00-10:00", slot.Descriptor())
}

func TestSessionType_Valid(t *testing.T) {
	assert.True(t, SessionTypeLecture.Valid())
	assert.True(t, SessionTypePractical.Valid())
	assert.False(t, SessionType("SEMINAR").Valid())
	assert.False(t, SessionType("").Valid())
}

func TestConflictReport_HasConflicts(t *testing.T) {
	r := NewConflictReport()
	assert.False(t, r.HasConflicts())
	assert.False(t, r.View().HasConflicts)

	r.TeacherConflicts = append(r.TeacherConflicts, "x")
	assert.True(t, r.HasConflicts())
	assert.True(t, r.View().HasConflicts)
}
