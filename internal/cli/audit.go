package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uniflow/uniflow-backend/internal/service"
)

// ErrConflictsFound makes `ttctl audit --fail-on-conflict` exit non-zero.
var ErrConflictsFound = errors.New("timetable has conflicts")

var failOnConflict bool

var auditCmd = &cobra.Command{
	Use:     "audit",
	Short:   "Scan the whole timetable for conflicts",
	Long:    `Compare every pair of sessions sharing a timeslot and report room, teacher and student conflicts.`,
	Args:    cobra.NoArgs,
	GroupID: "timetable",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		report, err := service.NewConflictReportService(e.store, e.log).Generate(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			if err := writeJSON(out, report.View()); err != nil {
				return err
			}
		} else {
			printSection(out, fmt.Sprintf("Conflict audit (%d sessions)", report.SessionsScanned))
			printLabelValue(out, "Room conflicts", fmt.Sprint(len(report.RoomConflicts)))
			printList(out, report.RoomConflicts)
			printLabelValue(out, "Teacher conflicts", fmt.Sprint(len(report.TeacherConflicts)))
			printList(out, report.TeacherConflicts)
			printLabelValue(out, "Student conflicts", fmt.Sprint(len(report.StudentConflicts)))
			printList(out, report.StudentConflicts)
			if report.HasConflicts() {
				printWarning(out, "Timetable has conflicts")
			} else {
				printSuccess(out, "No conflicts found")
			}
		}

		if failOnConflict && report.HasConflicts() {
			return ErrConflictsFound
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().BoolVar(&failOnConflict, "fail-on-conflict", false, "Exit non-zero when any conflict is found")
	rootCmd.AddCommand(auditCmd)
}
