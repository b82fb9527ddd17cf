package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniflow/uniflow-backend/internal/lock"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/repository/memory"
	"github.com/uniflow/uniflow-backend/internal/response"
	"github.com/uniflow/uniflow-backend/internal/service"
	"github.com/uniflow/uniflow-backend/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

type auditSpy struct {
	requestedBy []string
	err         error
}

func (s *auditSpy) RequestAudit(_ context.Context, requestedBy string) error {
	s.requestedBy = append(s.requestedBy, requestedBy)
	return s.err
}

// fixture wires the handlers over an in-memory timetable:
// two teachers, two groups of 2 students, a big and a tiny room, two slots, one module.
type fixture struct {
	t      *testing.T
	engine *gin.Engine
	store  *memory.Store
	audits *auditSpy

	teacherA, teacherB *model.Teacher
	groupA, groupB     *model.Group
	bigRoom, tinyRoom  *model.Room
	monday, tuesday    *model.Timeslot
	algebra            *model.Module
	students           []*model.Student
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	f := &fixture{t: t, store: store, audits: &auditSpy{}}

	f.teacherA = &model.Teacher{FirstName: "Ada", LastName: "Lovelace"}
	f.teacherB = &model.Teacher{FirstName: "Alan", LastName: "Turing"}
	f.groupA = &model.Group{Name: "CS-A", Program: "CS", Level: "L2"}
	f.groupB = &model.Group{Name: "CS-B", Program: "CS", Level: "L2"}
	f.bigRoom = &model.Room{Name: "Amphi 1", Capacity: 100}
	f.tinyRoom = &model.Room{Name: "Lab 0", Capacity: 1}
	f.monday = &model.Timeslot{DayOfWeek: "MONDAY", StartTime: "08:00", EndTime: "10:00"}
	f.tuesday = &model.Timeslot{DayOfWeek: "TUESDAY", StartTime: "08:00", EndTime: "10:00"}
	f.algebra = &model.Module{Name: "Algebra", Program: "CS", Semester: 3, VolumeHours: 30}

	require.NoError(t, store.CreateTeacher(ctx, f.teacherA))
	require.NoError(t, store.CreateTeacher(ctx, f.teacherB))
	require.NoError(t, store.CreateGroup(ctx, f.groupA))
	require.NoError(t, store.CreateGroup(ctx, f.groupB))
	require.NoError(t, store.CreateRoom(ctx, f.bigRoom))
	require.NoError(t, store.CreateRoom(ctx, f.tinyRoom))
	require.NoError(t, store.CreateTimeslot(ctx, f.monday))
	require.NoError(t, store.CreateTimeslot(ctx, f.tuesday))
	require.NoError(t, store.CreateModule(ctx, f.algebra))
	for _, g := range []*model.Group{f.groupA, f.groupA, f.groupB, f.groupB} {
		st := &model.Student{FirstName: "Student", LastName: g.Name, Program: "CS", Level: "L2", GroupID: &g.ID}
		require.NoError(t, store.CreateStudent(ctx, st))
		f.students = append(f.students, st)
	}

	log := zerolog.Nop()
	events := service.NewLocalEventBus()
	locker := lock.NewLocal(time.Second)
	conflicts := service.NewConflictValidator(store, log)
	sessions := NewSessionHandler(service.NewSessionService(store, conflicts, locker, events, log))
	enrollments := NewEnrollmentHandler(service.NewEnrollmentService(store, conflicts, locker, events, log))
	references := NewReferenceHandler(service.NewReferenceService(store))
	reports := NewReportHandler(service.NewConflictReportService(store, log), service.NewMemoryReportCache(), f.audits, log)

	r := gin.New()
	api := r.Group("/api/v1/admin")
	api.GET("/sessions", sessions.ListSessions)
	api.POST("/sessions", sessions.CreateSession)
	api.POST("/sessions/validate", sessions.ValidateSession)
	api.GET("/sessions/:id", sessions.GetSession)
	api.PUT("/sessions/:id", sessions.UpdateSession)
	api.DELETE("/sessions/:id", sessions.DeleteSession)
	api.GET("/groups/:id/sessions", sessions.ListGroupSessions)
	api.GET("/teachers/:id/sessions", sessions.ListTeacherSessions)
	api.POST("/enrollments", enrollments.Enroll)
	api.DELETE("/enrollments/:id", enrollments.DeleteEnrollment)
	api.GET("/students/:id/enrollments", enrollments.ListStudentEnrollments)
	api.GET("/modules/:id/enrollments", enrollments.ListModuleEnrollments)
	api.GET("/rooms", references.ListRooms)
	api.GET("/groups", references.ListGroups)
	api.GET("/timeslots", references.ListTimeslots)
	api.GET("/groups/:id/students", references.ListGroupStudents)
	api.GET("/reports/conflicts", reports.GetConflictReport)
	api.GET("/reports/conflicts/latest", reports.GetLatestConflictReport)
	api.POST("/reports/conflicts/refresh", reports.RefreshConflictReport)
	f.engine = r
	return f
}

func (f *fixture) do(method, path string, body interface{}) (int, envelope) {
	f.t.Helper()
	var reader *strings.Reader
	switch b := body.(type) {
	case nil:
		reader = strings.NewReader("")
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(f.t, err)
		reader = strings.NewReader(string(raw))
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(f.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (f *fixture) sessionRequest(teacher *model.Teacher, group *model.Group, room *model.Room, slot *model.Timeslot) model.SessionRequest {
	return model.SessionRequest{
		Type:       model.SessionTypeLecture,
		ModuleID:   f.algebra.ID,
		TeacherID:  teacher.ID,
		GroupID:    group.ID,
		RoomID:     room.ID,
		TimeslotID: slot.ID,
	}
}

func decode[T any](t *testing.T, raw json.RawMessage, key string) T {
	t.Helper()
	var wrapper map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &wrapper))
	var out T
	require.NoError(t, json.Unmarshal(wrapper[key], &out))
	return out
}

func TestSessionHandlerCreate(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(http.MethodPost, "/api/v1/admin/sessions", f.sessionRequest(f.teacherA, f.groupA, f.bigRoom, f.monday))
	require.Equal(t, http.StatusCreated, code)
	created := decode[model.Session](t, env.Data, "session")
	assert.NotZero(t, created.ID)
	assert.Equal(t, f.monday.ID, created.TimeslotID)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   response.ErrCode
		detail string
	}{
		{
			name:   "teacher double booked",
			body:   f.sessionRequest(f.teacherA, f.groupB, f.bigRoom, f.monday),
			status: http.StatusConflict,
			code:   response.ErrTeacherConflict,
			detail: "Ada Lovelace",
		},
		{
			name:   "group double booked",
			body:   f.sessionRequest(f.teacherB, f.groupA, f.tinyRoom, f.monday),
			status: http.StatusConflict,
			code:   response.ErrGroupConflict,
		},
		{
			name:   "room double booked",
			body:   f.sessionRequest(f.teacherB, f.groupB, f.bigRoom, f.monday),
			status: http.StatusConflict,
			code:   response.ErrRoomConflict,
			detail: "Amphi 1",
		},
		{
			name:   "room too small",
			body:   f.sessionRequest(f.teacherB, f.groupB, f.tinyRoom, f.tuesday),
			status: http.StatusConflict,
			code:   response.ErrCapacityConflict,
		},
		{
			name:   "unknown room",
			body:   model.SessionRequest{Type: model.SessionTypeLecture, ModuleID: f.algebra.ID, TeacherID: f.teacherB.ID, GroupID: f.groupB.ID, RoomID: 999, TimeslotID: f.tuesday.ID},
			status: http.StatusNotFound,
			code:   response.ErrReferenceNotFound,
			detail: "room",
		},
		{
			name:   "invalid session type",
			body:   `{"type":"SEMINAR","module_id":1,"teacher_id":1,"group_id":1,"room_id":1,"timeslot_id":1}`,
			status: http.StatusBadRequest,
			code:   response.ErrValidation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, env := f.do(http.MethodPost, "/api/v1/admin/sessions", tc.body)
			assert.Equal(t, tc.status, code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.code, env.Error.Code)
			if tc.detail != "" {
				assert.Contains(t, env.Error.Detail, tc.detail)
			}
		})
	}

	code, env = f.do(http.MethodGet, "/api/v1/admin/sessions", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Session](t, env.Data, "sessions"), 1)
}

func TestSessionHandlerUpdateAndDelete(t *testing.T) {
	f := newFixture(t)

	_, env := f.do(http.MethodPost, "/api/v1/admin/sessions", f.sessionRequest(f.teacherA, f.groupA, f.bigRoom, f.monday))
	sess := decode[model.Session](t, env.Data, "session")
	path := "/api/v1/admin/sessions/" + itoa(sess.ID)

	// Re-saving the same assignment must not conflict with itself.
	code, _ := f.do(http.MethodPut, path, f.sessionRequest(f.teacherA, f.groupA, f.bigRoom, f.monday))
	assert.Equal(t, http.StatusOK, code)

	code, env = f.do(http.MethodPut, path, f.sessionRequest(f.teacherB, f.groupA, f.bigRoom, f.tuesday))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, f.tuesday.ID, decode[model.Session](t, env.Data, "session").TimeslotID)

	code, env = f.do(http.MethodPut, "/api/v1/admin/sessions/abc", f.sessionRequest(f.teacherA, f.groupA, f.bigRoom, f.monday))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, response.ErrInvalidID, env.Error.Code)

	code, _ = f.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = f.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, response.ErrReferenceNotFound, env.Error.Code)

	code, _ = f.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSessionHandlerValidate(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodPost, "/api/v1/admin/sessions", f.sessionRequest(f.teacherA, f.groupA, f.bigRoom, f.monday))

	free := model.ValidateSessionRequest{TeacherID: f.teacherB.ID, GroupID: f.groupB.ID, RoomID: f.bigRoom.ID, TimeslotID: f.tuesday.ID}
	code, env := f.do(http.MethodPost, "/api/v1/admin/sessions/validate", free)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[bool](t, env.Data, "valid"))

	busy := model.ValidateSessionRequest{TeacherID: f.teacherA.ID, GroupID: f.groupB.ID, RoomID: f.tinyRoom.ID, TimeslotID: f.monday.ID}
	code, env = f.do(http.MethodPost, "/api/v1/admin/sessions/validate", busy)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, response.ErrTeacherConflict, env.Error.Code)

	// Nothing was written by the dry runs.
	_, env = f.do(http.MethodGet, "/api/v1/admin/sessions", nil)
	assert.Len(t, decode[[]model.Session](t, env.Data, "sessions"), 1)
}

func TestSessionHandlerTimetables(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodPost, "/api/v1/admin/sessions", f.sessionRequest(f.teacherA, f.groupA, f.bigRoom, f.monday))
	f.do(http.MethodPost, "/api/v1/admin/sessions", f.sessionRequest(f.teacherB, f.groupB, f.bigRoom, f.tuesday))

	code, env := f.do(http.MethodGet, "/api/v1/admin/groups/"+itoa(f.groupB.ID)+"/sessions", nil)
	require.Equal(t, http.StatusOK, code)
	sessions := decode[[]model.Session](t, env.Data, "sessions")
	require.Len(t, sessions, 1)
	assert.Equal(t, f.teacherB.ID, sessions[0].TeacherID)

	code, env = f.do(http.MethodGet, "/api/v1/admin/teachers/"+itoa(f.teacherA.ID)+"/sessions", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Session](t, env.Data, "sessions"), 1)

	code, _ = f.do(http.MethodGet, "/api/v1/admin/teachers/42/sessions", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestEnrollmentHandler(t *testing.T) {
	f := newFixture(t)
	student := f.students[0]
	body := model.EnrollRequest{StudentID: student.ID, ModuleID: f.algebra.ID}

	code, env := f.do(http.MethodPost, "/api/v1/admin/enrollments", body)
	require.Equal(t, http.StatusCreated, code)
	enrollment := decode[model.Enrollment](t, env.Data, "enrollment")

	code, env = f.do(http.MethodPost, "/api/v1/admin/enrollments", body)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, response.ErrAlreadyEnrolled, env.Error.Code)

	code, env = f.do(http.MethodPost, "/api/v1/admin/enrollments", model.EnrollRequest{StudentID: 999, ModuleID: f.algebra.ID})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, response.ErrReferenceNotFound, env.Error.Code)

	code, env = f.do(http.MethodPost, "/api/v1/admin/enrollments", `{"student_id":0}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error.Fields, "module_id")

	code, env = f.do(http.MethodGet, "/api/v1/admin/students/"+itoa(student.ID)+"/enrollments", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Enrollment](t, env.Data, "enrollments"), 1)

	code, env = f.do(http.MethodGet, "/api/v1/admin/modules/"+itoa(f.algebra.ID)+"/enrollments", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Enrollment](t, env.Data, "enrollments"), 1)

	code, _ = f.do(http.MethodDelete, "/api/v1/admin/enrollments/"+itoa(enrollment.ID), nil)
	assert.Equal(t, http.StatusOK, code)

	_, env = f.do(http.MethodGet, "/api/v1/admin/students/"+itoa(student.ID)+"/enrollments", nil)
	assert.Empty(t, decode[[]model.Enrollment](t, env.Data, "enrollments"))
}

func TestReferenceHandler(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(http.MethodGet, "/api/v1/admin/rooms", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Room](t, env.Data, "rooms"), 2)

	_, env = f.do(http.MethodGet, "/api/v1/admin/groups", nil)
	groups := decode[[]model.GroupSummary](t, env.Data, "groups")
	require.Len(t, groups, 2)
	assert.Equal(t, 2, groups[0].StudentCount)

	_, env = f.do(http.MethodGet, "/api/v1/admin/timeslots", nil)
	slots := decode[[]model.Timeslot](t, env.Data, "timeslots")
	require.Len(t, slots, 2)
	assert.Equal(t, "MONDAY", slots[0].DayOfWeek)

	code, env = f.do(http.MethodGet, "/api/v1/admin/groups/"+itoa(f.groupA.ID)+"/students", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Student](t, env.Data, "students"), 2)

	code, _ = f.do(http.MethodGet, "/api/v1/admin/groups/0/students", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestReportHandler(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(http.MethodGet, "/api/v1/admin/reports/conflicts/latest", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, response.ErrReportNotReady, env.Error.Code)

	// Two parallel sessions sharing no resource.
	ctx := context.Background()
	for _, x := range []*model.Session{
		{Type: model.SessionTypeLecture, ModuleID: f.algebra.ID, TeacherID: f.teacherA.ID, GroupID: f.groupA.ID, RoomID: f.bigRoom.ID, TimeslotID: f.monday.ID},
		{Type: model.SessionTypeLecture, ModuleID: f.algebra.ID, TeacherID: f.teacherB.ID, GroupID: f.groupB.ID, RoomID: f.tinyRoom.ID, TimeslotID: f.monday.ID},
	} {
		require.NoError(t, f.store.CreateSession(ctx, x))
	}

	code, env = f.do(http.MethodGet, "/api/v1/admin/reports/conflicts", nil)
	require.Equal(t, http.StatusOK, code)
	report := decode[model.ConflictReportView](t, env.Data, "report")
	assert.False(t, report.HasConflicts)
	assert.Equal(t, 2, report.SessionsScanned)

	code, env = f.do(http.MethodGet, "/api/v1/admin/reports/conflicts/latest", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, decode[model.ConflictReportView](t, env.Data, "report").SessionsScanned)

	code, _ = f.do(http.MethodPost, "/api/v1/admin/reports/conflicts/refresh", nil)
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, []string{"anonymous"}, f.audits.requestedBy)

	f.audits.err = errors.New("redis down")
	code, env = f.do(http.MethodPost, "/api/v1/admin/reports/conflicts/refresh", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, response.ErrInternal, env.Error.Code)
}

func TestFailService(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   response.ErrCode
	}{
		{"busy", service.ErrSchedulingBusy, http.StatusLocked, response.ErrSchedulingBusy},
		{"already enrolled", service.ErrAlreadyEnrolled, http.StatusConflict, response.ErrAlreadyEnrolled},
		{"invalid session type", service.ErrInvalidSessionType, http.StatusBadRequest, response.ErrValidation},
		{"store failure", &service.StoreFailureError{Op: "list sessions", Err: errors.New("connection reset")}, http.StatusInternalServerError, response.ErrInternal},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			failService(c, tc.err)

			assert.Equal(t, tc.status, w.Code)
			var env envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.Equal(t, tc.code, env.Error.Code)
			assert.NotContains(t, env.Error.Detail, "connection reset")
		})
	}
}

func TestSystemHealth(t *testing.T) {
	tests := []struct {
		name   string
		ping   PingFunc
		status int
		state  string
	}{
		{"no dependencies", nil, http.StatusOK, "ok"},
		{"store reachable", func(context.Context) error { return nil }, http.StatusOK, "ok"},
		{"store down", func(context.Context) error { return errors.New("dial tcp: refused") }, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewSystemHandler(nil, "memory", tc.ping, zerolog.Nop())
			r := gin.New()
			r.GET("/health", h.Health)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tc.status, w.Code)
			var env envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			var status healthStatus
			require.NoError(t, json.Unmarshal(env.Data, &status))
			assert.Equal(t, tc.state, status.Status)
			assert.Equal(t, "memory", status.Store)
		})
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
