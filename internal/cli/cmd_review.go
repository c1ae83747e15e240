package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskflow/internal/backend"
	"taskflow/internal/planner"
)

// newReviewCmd creates the review command
func newReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Show the weekly review",
		Long: `Summarize the current Monday to Sunday week: what was completed,
what is overdue and what is due in the next seven days.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app, sess *backend.Session) error {
				now := a.now()
				review := planner.WeeklyReview(sess.Tasks(), now)
				fmt.Fprint(cmd.OutOrStdout(), renderReview(currentTheme(), review, now))
				return nil
			})
		},
	}
}
