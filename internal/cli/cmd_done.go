package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskflow/internal/backend"
)

// newDoneCmd creates the done command
func newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>",
		Short: "Complete a task",
		Long: `Mark a task done. A unique prefix of the id is enough.

Recurring tasks are not finished: they move to their next date and
stay open.

Example:
  taskflow done 3f2a9c1e
  taskflow done 3f2a`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app, sess *backend.Session) error {
				c, err := a.tasks.CompleteTask(cmd.Context(), sess, args[0])
				if err != nil {
					return err
				}
				if err := wait(cmd.Context(), c.Op); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), completionMessage(currentTheme(), c))
				return nil
			})
		},
	}
}

// newReopenCmd creates the reopen command
func newReopenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <task-id>",
		Short: "Move a finished task back to in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app, sess *backend.Session) error {
				t, err := a.tasks.Resolve(sess, args[0])
				if err != nil {
					return err
				}
				op, err := a.tasks.ReopenTask(cmd.Context(), sess, t.ID)
				if err != nil {
					return err
				}
				if err := wait(cmd.Context(), op); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reopened %q\n", truncate(t.Title, titleWidth))
				return nil
			})
		},
	}
}
