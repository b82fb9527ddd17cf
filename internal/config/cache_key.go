package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TimeslotLockKey returns the advisory lock key guarding writes at a timeslot
func (r *CacheKeyStruct) TimeslotLockKey(timeslotID int) string {
	return fmt.Sprintf("lock:timeslot:%d", timeslotID)
}

// StudentLockKey returns the advisory lock key guarding a student's enrollments
func (r *CacheKeyStruct) StudentLockKey(studentID int) string {
	return fmt.Sprintf("lock:student:%d", studentID)
}

// LatestConflictReportKey returns the cache key for the last audit report
func (r *CacheKeyStruct) LatestConflictReportKey() string {
	return "report:conflicts:latest"
}

// TimetableEventsChannel returns the Redis PubSub channel for timetable changes
func (r *CacheKeyStruct) TimetableEventsChannel() string {
	return "timetable:events"
}

var CacheKey = NewCacheKeyStruct()
