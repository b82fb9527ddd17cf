package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ClockLayout is the wire and storage format of timeslot boundaries.
const ClockLayout = "15:04"

var (
	ErrInvalidDay       = errors.New("day of week is required")
	ErrInvalidClock     = errors.New("time must use HH:MM format")
	ErrTimeslotInverted = errors.New("start time must be before end time")
)

// Timeslot is a (day, start, end) interval, the atomic unit of scheduling collision.
type Timeslot struct {
	ID        int       `json:"id"`
	DayOfWeek string    `json:"day_of_week"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

// Normalize upper-cases the day label, e.g. "monday" -> "MONDAY".
func (t *Timeslot) Normalize() {
	t.DayOfWeek = strings.ToUpper(strings.TrimSpace(t.DayOfWeek))
}

// Validate checks that the day is set and that start strictly precedes end.
func (t *Timeslot) Validate() error {
	if strings.TrimSpace(t.DayOfWeek) == "" {
		return ErrInvalidDay
	}
	start, err := time.Parse(ClockLayout, t.StartTime)
	if err != nil {
		return fmt.Errorf("start_time %q: %w", t.StartTime, ErrInvalidClock)
	}
	end, err := time.Parse(ClockLayout, t.EndTime)
	if err != nil {
		return fmt.Errorf("end_time %q: %w", t.EndTime, ErrInvalidClock)
	}
	if !start.Before(end) {
		return ErrTimeslotInverted
	}
	return nil
}

// Descriptor renders the slot for conflict messages, e.g. "MON 08:00-10:00".
func (t *Timeslot) Descriptor() string {
	day := strings.ToUpper(t.DayOfWeek)
	if len(day) > 3 {
		day = day[:3]
	}
	return fmt.Sprintf("%s %s-%s", day, t.StartTime, t.EndTime)
}
