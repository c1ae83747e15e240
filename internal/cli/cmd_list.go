package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskflow/internal/backend"
	"taskflow/internal/model"
	"taskflow/internal/planner"
)

// newListCmd creates the list command
func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [search...]",
		Aliases: []string{"ls"},
		Short:   "List tasks grouped by due date",
		Long: `List tasks grouped into Overdue, Today, This week, Upcoming and
Completed. Within a group tasks are ordered by priority.

Example:
  taskflow list
  taskflow list --status todo --priority high
  taskflow list groceries`,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			priority, _ := cmd.Flags().GetString("priority")
			filter, err := buildFilter(status, priority, strings.Join(args, " "))
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app, sess *backend.Session) error {
				board := a.tasks.Board(sess, filter)
				stats := a.tasks.Stats(sess)
				fmt.Fprint(cmd.OutOrStdout(), renderBoard(currentTheme(), board, stats, a.now()))
				return nil
			})
		},
	}
	cmd.Flags().StringP("status", "s", "", "filter by status (todo, in-progress, done)")
	cmd.Flags().StringP("priority", "p", "", "filter by priority (critical, high, medium, low)")
	return cmd
}

// buildFilter validates the list flags.
func buildFilter(status, priority, search string) (planner.Filter, error) {
	f := planner.Filter{Search: strings.TrimSpace(search)}
	if status != "" {
		f.Status = model.Status(strings.ToLower(status))
		if !f.Status.Valid() {
			return planner.Filter{}, fmt.Errorf("unknown status %q", status)
		}
	}
	if priority != "" {
		f.Priority = model.Priority(strings.ToLower(priority))
		if !f.Priority.Valid() {
			return planner.Filter{}, fmt.Errorf("unknown priority %q", priority)
		}
	}
	return f, nil
}
