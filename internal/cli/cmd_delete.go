package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"taskflow/internal/backend"
)

// newDeleteCmd creates the delete command
func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Long: `Delete a task. Asks for confirmation unless --force is given.

Example:
  taskflow delete 3f2a9c1e
  taskflow delete 3f2a --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			return withApp(cmd.Context(), func(a *app, sess *backend.Session) error {
				t, err := a.tasks.Resolve(sess, args[0])
				if err != nil {
					return err
				}
				if !force {
					fmt.Fprintf(cmd.OutOrStdout(), "Delete %q? [y/N] ", truncate(t.Title, titleWidth))
					if !confirmed(cmd.InOrStdin()) {
						fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
						return nil
					}
				}

				_, op, err := a.tasks.DeleteTask(cmd.Context(), sess, t.ID)
				if err != nil {
					return err
				}
				if err := wait(cmd.Context(), op); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", shortID(t.ID))
				return nil
			})
		},
	}
	cmd.Flags().BoolP("force", "f", false, "skip the confirmation prompt")
	return cmd
}

// confirmed reads one answer line. Only y and yes confirm.
func confirmed(in io.Reader) bool {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
