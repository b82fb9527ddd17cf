package cli

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/service"
)

// ErrRejected makes `ttctl check` exit non-zero when the dry run fails.
var ErrRejected = errors.New("request would be rejected")

// checkResult is the --json shape of a dry run.
type checkResult struct {
	OK       bool                   `json:"ok"`
	Kind     service.Kind           `json:"kind,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Conflict *service.ConflictError `json:"conflict,omitempty"`
}

var (
	checkTeacher, checkGroup, checkRoom, checkTimeslot, checkExclude int
	checkStudent, checkModule                                        int
)

var checkCmd = &cobra.Command{
	Use:     "check",
	Short:   "Dry-run a scheduling decision",
	GroupID: "timetable",
}

var checkSessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Check whether a session could be scheduled",
	Long: `Run the teacher, group, room, capacity and student checks for a
prospective session. Pass --exclude to check a move of an existing session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		err = e.sessions().Validate(ctx, model.ValidateSessionRequest{
			TeacherID:        checkTeacher,
			GroupID:          checkGroup,
			RoomID:           checkRoom,
			TimeslotID:       checkTimeslot,
			ExcludeSessionID: checkExclude,
		})
		return reportCheck(cmd.OutOrStdout(), err, "Session can be scheduled")
	},
}

var checkEnrollmentCmd = &cobra.Command{
	Use:   "enrollment",
	Short: "Check whether a student could enroll in a module",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		err = checkEnrollment(ctx, e, checkStudent, checkModule)
		return reportCheck(cmd.OutOrStdout(), err, "Student can enroll")
	},
}

func checkEnrollment(ctx context.Context, e *env, studentID, moduleID int) error {
	if _, err := e.store.GetStudent(ctx, studentID); err != nil {
		return notFound(err, "student", studentID)
	}
	if _, err := e.store.GetModule(ctx, moduleID); err != nil {
		return notFound(err, "module", moduleID)
	}
	exists, err := e.store.EnrollmentExists(ctx, studentID, moduleID)
	if err != nil {
		return &service.StoreFailureError{Op: "check enrollment", Err: err}
	}
	if exists {
		return service.ErrAlreadyEnrolled
	}
	return e.validator().CheckEnrollmentOverlap(ctx, studentID, moduleID)
}

// reportCheck prints the outcome of a dry run. Store failures are returned
// as they are; rejections print their reason and return ErrRejected.
func reportCheck(w io.Writer, err error, okMsg string) error {
	kind := service.KindOf(err)
	if kind == service.KindInternalStoreFailure {
		return err
	}

	res := checkResult{OK: err == nil, Kind: kind}
	if err != nil {
		res.Message = err.Error()
		res.Conflict, _ = service.AsConflict(err)
	}

	if jsonOutput {
		if werr := writeJSON(w, res); werr != nil {
			return werr
		}
	} else if res.OK {
		printSuccess(w, okMsg)
	} else {
		printFailure(w, string(res.Kind))
		printLabelValue(w, "Reason", res.Message)
		if res.Conflict != nil && len(res.Conflict.Students) > 0 {
			printLabelValue(w, "Students", "")
			printList(w, res.Conflict.Students)
		}
	}

	if !res.OK {
		return ErrRejected
	}
	return nil
}

func init() {
	f := checkSessionCmd.Flags()
	f.IntVar(&checkTeacher, "teacher", 0, "Teacher ID")
	f.IntVar(&checkGroup, "group", 0, "Group ID")
	f.IntVar(&checkRoom, "room", 0, "Room ID")
	f.IntVar(&checkTimeslot, "timeslot", 0, "Timeslot ID")
	f.IntVar(&checkExclude, "exclude", 0, "ID of the session being moved")
	for _, name := range []string{"teacher", "group", "room", "timeslot"} {
		_ = checkSessionCmd.MarkFlagRequired(name)
	}

	f = checkEnrollmentCmd.Flags()
	f.IntVar(&checkStudent, "student", 0, "Student ID")
	f.IntVar(&checkModule, "module", 0, "Module ID")
	_ = checkEnrollmentCmd.MarkFlagRequired("student")
	_ = checkEnrollmentCmd.MarkFlagRequired("module")

	checkCmd.AddCommand(checkSessionCmd, checkEnrollmentCmd)
	rootCmd.AddCommand(checkCmd)
}
