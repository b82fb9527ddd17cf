package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/uniflow/uniflow-backend/internal/model"
)

// ReportStore is the read surface of the conflict audit.
type ReportStore interface {
	ListSessions(ctx context.Context) ([]model.Session, error)
	ListEnrollmentsByModule(ctx context.Context, moduleID int) ([]model.Enrollment, error)
	GetRoom(ctx context.Context, id int) (*model.Room, error)
	GetTeacher(ctx context.Context, id int) (*model.Teacher, error)
	GetModule(ctx context.Context, id int) (*model.Module, error)
}

// ConflictReportService audits the whole timetable for latent conflicts.
// It never writes.
type ConflictReportService struct {
	store ReportStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewConflictReportService creates a new ConflictReportService.
func NewConflictReportService(store ReportStore, log zerolog.Logger) *ConflictReportService {
	return &ConflictReportService{
		store: store,
		log:   log.With().Str("component", "conflict_report").Logger(),
		now:   time.Now,
	}
}

// Generate buckets all sessions by timeslot and compares every unordered
// pair within a bucket. Buckets are visited in order of first appearance and
// each list keeps discovery order.
func (s *ConflictReportService) Generate(ctx context.Context) (*model.ConflictReport, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, storeFailure("list sessions", err)
	}

	var order []int
	buckets := make(map[int][]model.Session)
	for _, sess := range sessions {
		if _, ok := buckets[sess.TimeslotID]; !ok {
			order = append(order, sess.TimeslotID)
		}
		buckets[sess.TimeslotID] = append(buckets[sess.TimeslotID], sess)
	}

	report := model.NewConflictReport()
	report.SessionsScanned = len(sessions)
	run := newReportRun(s.store)

	for _, timeslotID := range order {
		bucket := buckets[timeslotID]
		if len(bucket) < 2 {
			continue
		}
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				if err := run.compare(ctx, report, bucket[i], bucket[j]); err != nil {
					return nil, err
				}
			}
		}
	}

	report.GeneratedAt = s.now().UTC()
	s.log.Info().
		Int("sessions", report.SessionsScanned).
		Int("room_conflicts", len(report.RoomConflicts)).
		Int("teacher_conflicts", len(report.TeacherConflicts)).
		Int("student_conflicts", len(report.StudentConflicts)).
		Msg("Conflict report generated")
	return report, nil
}

// reportRun memoizes lookups for the duration of one audit so each module's
// enrollment set is fetched once and pair intersections are set probes.
type reportRun struct {
	store    ReportStore
	enrolled map[int]map[int]struct{}
	modules  map[int]string
	rooms    map[int]string
	teachers map[int]string
}

func newReportRun(store ReportStore) *reportRun {
	return &reportRun{
		store:    store,
		enrolled: make(map[int]map[int]struct{}),
		modules:  make(map[int]string),
		rooms:    make(map[int]string),
		teachers: make(map[int]string),
	}
}

func (r *reportRun) compare(ctx context.Context, report *model.ConflictReport, a, b model.Session) error {
	if a.RoomID == b.RoomID {
		room, err := r.roomName(ctx, a.RoomID)
		if err != nil {
			return err
		}
		ma, mb, err := r.modulePair(ctx, a, b)
		if err != nil {
			return err
		}
		report.RoomConflicts = append(report.RoomConflicts, fmt.Sprintf("Room %s: %s vs %s", room, ma, mb))
	}

	if a.TeacherID == b.TeacherID {
		teacher, err := r.teacherName(ctx, a.TeacherID)
		if err != nil {
			return err
		}
		ma, mb, err := r.modulePair(ctx, a, b)
		if err != nil {
			return err
		}
		report.TeacherConflicts = append(report.TeacherConflicts, fmt.Sprintf("Teacher %s: %s vs %s", teacher, ma, mb))
	}

	common, err := r.commonStudents(ctx, a.ModuleID, b.ModuleID)
	if err != nil {
		return err
	}
	if common > 0 {
		ma, mb, err := r.modulePair(ctx, a, b)
		if err != nil {
			return err
		}
		report.StudentConflicts = append(report.StudentConflicts,
			fmt.Sprintf("Students (%d affected): %s vs %s", common, ma, mb))
	}
	return nil
}

func (r *reportRun) commonStudents(ctx context.Context, moduleA, moduleB int) (int, error) {
	setA, err := r.enrollmentSet(ctx, moduleA)
	if err != nil {
		return 0, err
	}
	setB, err := r.enrollmentSet(ctx, moduleB)
	if err != nil {
		return 0, err
	}
	if len(setB) < len(setA) {
		setA, setB = setB, setA
	}
	n := 0
	for id := range setA {
		if _, ok := setB[id]; ok {
			n++
		}
	}
	return n, nil
}

func (r *reportRun) enrollmentSet(ctx context.Context, moduleID int) (map[int]struct{}, error) {
	if set, ok := r.enrolled[moduleID]; ok {
		return set, nil
	}
	enrollments, err := r.store.ListEnrollmentsByModule(ctx, moduleID)
	if err != nil {
		return nil, storeFailure("list enrollments by module", err)
	}
	set := make(map[int]struct{}, len(enrollments))
	for _, e := range enrollments {
		set[e.StudentID] = struct{}{}
	}
	r.enrolled[moduleID] = set
	return set, nil
}

func (r *reportRun) modulePair(ctx context.Context, a, b model.Session) (string, string, error) {
	ma, err := r.moduleName(ctx, a.ModuleID)
	if err != nil {
		return "", "", err
	}
	mb, err := r.moduleName(ctx, b.ModuleID)
	if err != nil {
		return "", "", err
	}
	return ma, mb, nil
}

func (r *reportRun) moduleName(ctx context.Context, id int) (string, error) {
	if name, ok := r.modules[id]; ok {
		return name, nil
	}
	m, err := lookup(ctx, "module", id, r.store.GetModule)
	if err != nil {
		return "", err
	}
	r.modules[id] = m.Name
	return m.Name, nil
}

func (r *reportRun) roomName(ctx context.Context, id int) (string, error) {
	if name, ok := r.rooms[id]; ok {
		return name, nil
	}
	room, err := lookup(ctx, "room", id, r.store.GetRoom)
	if err != nil {
		return "", err
	}
	r.rooms[id] = room.Name
	return room.Name, nil
}

func (r *reportRun) teacherName(ctx context.Context, id int) (string, error) {
	if name, ok := r.teachers[id]; ok {
		return name, nil
	}
	t, err := lookup(ctx, "teacher", id, r.store.GetTeacher)
	if err != nil {
		return "", err
	}
	r.teachers[id] = t.FullName()
	return r.teachers[id], nil
}
