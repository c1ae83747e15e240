package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"taskflow/internal/backend"
)

// newImportCmd creates the import command
func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import tasks from a CSV or JSON file",
		Long: `Import tasks from a .csv or .json file into the current list.

Rows without a title are skipped. Missing priorities and statuses fall
back to medium and todo, and unreadable dates to today.

Example:
  taskflow import tasks.csv
  taskflow import backup.json --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			path := args[0]

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			name := filepath.Base(path)

			return withApp(cmd.Context(), func(a *app, sess *backend.Session) error {
				res, err := a.tasks.PreviewImport(name, string(data))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				th := currentTheme()
				if dryRun {
					fmt.Fprintf(out, "%d tasks ready to import (%d rows skipped)\n", len(res.Tasks), res.Dropped())
					for _, t := range res.Tasks {
						fmt.Fprintf(out, "  %s\n", renderTask(th, t, a.now()))
					}
					return nil
				}
				if err := wait(cmd.Context(), a.tasks.ImportTasks(cmd.Context(), sess, res.Tasks)); err != nil {
					return err
				}
				fmt.Fprintln(out, th.Success.Render(fmt.Sprintf("Imported %d of %d rows from %s", len(res.Tasks), res.Rows, name)))
				return nil
			})
		},
	}
	cmd.Flags().Bool("dry-run", false, "show what would be imported without saving")
	return cmd
}
