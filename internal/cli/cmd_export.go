package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"taskflow/internal/backend"
	"taskflow/internal/codec"
)

// newExportCmd creates the export command
func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks to CSV or JSON",
		Long: `Export the current list. The file is named after the format
unless --output is given; use --output - to print to stdout.

Example:
  taskflow export
  taskflow export --format json --output backup.json
  taskflow export --output -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatFlag, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			format, err := codec.FormatOf("export." + strings.ToLower(formatFlag))
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app, sess *backend.Session) error {
				name, content, err := a.tasks.Export(sess, format)
				if err != nil {
					return err
				}
				if output == "-" {
					fmt.Fprint(cmd.OutOrStdout(), content)
					return nil
				}
				if output == "" {
					output = name
				}
				if err := os.WriteFile(output, []byte(content), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(sess.Tasks()), output)
				return nil
			})
		},
	}
	cmd.Flags().String("format", "csv", "export format (csv, json)")
	cmd.Flags().StringP("output", "o", "", "output file")
	return cmd
}
