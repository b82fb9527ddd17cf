package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uniflow/uniflow-backend/internal/model"
	"github.com/uniflow/uniflow-backend/internal/repository"
	"github.com/uniflow/uniflow-backend/internal/service"
)

var timetableGroup, timetableTeacher int

// timetableRow is one session with its references resolved to names.
type timetableRow struct {
	SessionID int               `json:"session_id"`
	Type      model.SessionType `json:"type"`
	Timeslot  string            `json:"timeslot"`
	Module    string            `json:"module"`
	Teacher   string            `json:"teacher"`
	Group     string            `json:"group"`
	Room      string            `json:"room"`
}

var timetableCmd = &cobra.Command{
	Use:     "timetable",
	Short:   "Print the weekly timetable of a group or teacher",
	Args:    cobra.NoArgs,
	GroupID: "timetable",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (timetableGroup == 0) == (timetableTeacher == 0) {
			return errors.New("exactly one of --group or --teacher is required")
		}

		ctx := context.Background()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		var sessions []model.Session
		if timetableGroup != 0 {
			sessions, err = e.sessions().ListByGroup(ctx, timetableGroup)
		} else {
			sessions, err = e.sessions().ListByTeacher(ctx, timetableTeacher)
		}
		if err != nil {
			return err
		}

		rows, err := resolveRows(ctx, e.store, sessions)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, rows)
		}
		if len(rows) == 0 {
			printWarning(out, "No sessions scheduled")
			return nil
		}
		table := make([][]string, 0, len(rows))
		for _, r := range rows {
			table = append(table, []string{r.Timeslot, string(r.Type), r.Module, r.Teacher, r.Group, r.Room})
		}
		printTable(out, []string{"WHEN", "TYPE", "MODULE", "TEACHER", "GROUP", "ROOM"}, table)
		return nil
	},
}

func resolveRows(ctx context.Context, store service.ReferenceReader, sessions []model.Session) ([]timetableRow, error) {
	rows := make([]timetableRow, 0, len(sessions))
	for _, s := range sessions {
		slot, err := store.GetTimeslot(ctx, s.TimeslotID)
		if err != nil {
			return nil, notFound(err, "timeslot", s.TimeslotID)
		}
		module, err := store.GetModule(ctx, s.ModuleID)
		if err != nil {
			return nil, notFound(err, "module", s.ModuleID)
		}
		teacher, err := store.GetTeacher(ctx, s.TeacherID)
		if err != nil {
			return nil, notFound(err, "teacher", s.TeacherID)
		}
		group, err := store.GetGroup(ctx, s.GroupID)
		if err != nil {
			return nil, notFound(err, "group", s.GroupID)
		}
		room, err := store.GetRoom(ctx, s.RoomID)
		if err != nil {
			return nil, notFound(err, "room", s.RoomID)
		}
		rows = append(rows, timetableRow{
			SessionID: s.ID,
			Type:      s.Type,
			Timeslot:  slot.Descriptor(),
			Module:    module.Name,
			Teacher:   teacher.FullName(),
			Group:     group.Name,
			Room:      room.Name,
		})
	}
	return rows, nil
}

// notFound maps a store miss onto the service error the commands report.
func notFound(err error, entity string, id int) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &service.ReferenceNotFoundError{Entity: entity, ID: id}
	}
	return &service.StoreFailureError{Op: fmt.Sprintf("get %s", entity), Err: err}
}

func init() {
	timetableCmd.Flags().IntVar(&timetableGroup, "group", 0, "Group ID")
	timetableCmd.Flags().IntVar(&timetableTeacher, "teacher", 0, "Teacher ID")
	rootCmd.AddCommand(timetableCmd)
}
