package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/service"
)

// Demo timetable ids, in creation order:
//
//	teachers: 1 Hopper, 2 Knuth, 3 Liskov
//	groups:   1 CS-L2-A (students 1-6), 2 CS-L2-B (students 7-11)
//	rooms:    1 Amphi A, 2 Lab 2, 3 TD 101
//	modules:  1 Algorithms, 2 Compilers, 3 Data Abstraction
//	slots:    1 MON 08:30, 2 MON 14:00, 3 TUE 08:30, 4 WED 10:15
func init() {
	color.NoColor = true
	openEnv = func(ctx context.Context) (*env, error) {
		return openDemo(ctx, zerolog.Nop())
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	jsonOutput, verbose, failOnConflict = false, false, false
	checkTeacher, checkGroup, checkRoom, checkTimeslot, checkExclude = 0, 0, 0, 0, 0
	checkStudent, checkModule = 0, 0
	timetableGroup, timetableTeacher = 0, 0

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersion(t *testing.T) {
	SetVersion("1.4.0")
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "1.4.0\n", out)
}

func TestAudit(t *testing.T) {
	out, err := run(t, "audit", "--json")
	require.NoError(t, err)

	var view model.ConflictReportView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.False(t, view.HasConflicts)
	assert.Equal(t, 5, view.SessionsScanned)

	out, err = run(t, "audit", "--fail-on-conflict")
	require.NoError(t, err)
	assert.Contains(t, out, "No conflicts found")
}

func TestCheckSession(t *testing.T) {
	tests := []struct {
		name string
		args []string
		kind service.Kind
	}{
		{
			name: "free slot",
			args: []string{"--teacher", "1", "--group", "2", "--room", "1", "--timeslot", "4"},
		},
		{
			name: "teacher busy",
			args: []string{"--teacher", "2", "--group", "2", "--room", "2", "--timeslot", "1"},
			kind: service.KindTeacherConflict,
		},
		{
			name: "room too small",
			args: []string{"--teacher", "1", "--group", "1", "--room", "2", "--timeslot", "3"},
			kind: service.KindCapacityConflict,
		},
		{
			name: "moving a session onto itself",
			args: []string{"--teacher", "2", "--group", "1", "--room", "1", "--timeslot", "1", "--exclude", "1"},
		},
		{
			name: "unknown room",
			args: []string{"--teacher", "1", "--group", "2", "--room", "99", "--timeslot", "4"},
			kind: service.KindReferenceNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := run(t, append([]string{"check", "session", "--json"}, tc.args...)...)

			var res checkResult
			require.NoError(t, json.Unmarshal([]byte(out), &res), out)
			assert.Equal(t, tc.kind, res.Kind)
			if tc.kind == service.KindNone {
				assert.NoError(t, err)
				assert.True(t, res.OK)
				return
			}
			assert.ErrorIs(t, err, ErrRejected)
			assert.False(t, res.OK)
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestCheckEnrollment(t *testing.T) {
	tests := []struct {
		name    string
		student string
		module  string
		kind    service.Kind
	}{
		{"no overlap", "7", "2", service.KindNone},
		{"overlapping lecture", "7", "1", service.KindEnrollmentOverlapConflict},
		{"already enrolled", "1", "1", service.KindAlreadyEnrolled},
		{"unknown student", "99", "1", service.KindReferenceNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := run(t, "check", "enrollment", "--json", "--student", tc.student, "--module", tc.module)

			var res checkResult
			require.NoError(t, json.Unmarshal([]byte(out), &res), out)
			assert.Equal(t, tc.kind, res.Kind)
			assert.Equal(t, tc.kind == service.KindNone, res.OK)
			if tc.kind != service.KindNone {
				assert.ErrorIs(t, err, ErrRejected)
			}
		})
	}
}

func TestCheckSessionText(t *testing.T) {
	out, err := run(t, "check", "session", "--teacher", "2", "--group", "2", "--room", "2", "--timeslot", "1")
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, out, "TEACHER_CONFLICT")
	assert.Contains(t, out, "Donald Knuth")
}

func TestTimetable(t *testing.T) {
	out, err := run(t, "timetable", "--group", "1", "--json")
	require.NoError(t, err)

	var rows []timetableRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "MON 08:30-10:00", rows[0].Timeslot)
	assert.Equal(t, "Algorithms", rows[0].Module)
	assert.Equal(t, "Amphi A", rows[0].Room)

	out, err = run(t, "timetable", "--teacher", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Data Abstraction")
	assert.Contains(t, out, "TD 101")

	_, err = run(t, "timetable", "--group", "1", "--teacher", "3")
	assert.Error(t, err)
}
