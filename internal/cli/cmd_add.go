package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/backend"
	"taskflow/internal/model"
	"taskflow/internal/planner"
	"taskflow/internal/service"
)

// newAddCmd creates the add command
func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Long: `Add a task to the list.

The date accepts today, tomorrow, YYYY-MM-DD and most common written
forms. Recurring tasks move to their next date when completed.

Example:
  taskflow add "Water plants" --date today --recurring weekly
  taskflow add "File taxes" --date 2025-04-15 --priority critical --category finance`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := addInput(cmd, strings.Join(args, " "))
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app, sess *backend.Session) error {
				input.TargetDate = dateFlag(input.TargetDate, a.now())
				op, err := a.tasks.AddTask(cmd.Context(), sess, input)
				if err != nil {
					return err
				}
				if err := wait(cmd.Context(), op); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), currentTheme().Success.Render(
					fmt.Sprintf("Added %q (%s)", truncate(input.Title, titleWidth), sess.Mode())))
				return nil
			})
		},
	}
	cmd.Flags().StringP("date", "d", "today", "target date")
	cmd.Flags().StringP("priority", "p", "medium", "priority (critical, high, medium, low)")
	cmd.Flags().String("status", "todo", "status (todo, in-progress, done)")
	cmd.Flags().String("desc", "", "description")
	cmd.Flags().StringP("category", "c", "", "category")
	cmd.Flags().StringP("recurring", "r", "", "repeat daily, weekdays, weekly or monthly")
	return cmd
}

func addInput(cmd *cobra.Command, title string) (service.TaskInput, error) {
	date, _ := cmd.Flags().GetString("date")
	priority, _ := cmd.Flags().GetString("priority")
	status, _ := cmd.Flags().GetString("status")
	desc, _ := cmd.Flags().GetString("desc")
	category, _ := cmd.Flags().GetString("category")
	recurring, _ := cmd.Flags().GetString("recurring")

	input := service.TaskInput{
		Title:       title,
		Description: desc,
		Priority:    model.Priority(strings.ToLower(priority)),
		Status:      model.Status(strings.ToLower(status)),
		TargetDate:  date,
		Category:    category,
	}
	if !input.Priority.Valid() {
		return service.TaskInput{}, fmt.Errorf("unknown priority %q", priority)
	}
	if !input.Status.Valid() {
		return service.TaskInput{}, fmt.Errorf("unknown status %q", status)
	}
	if recurring != "" {
		input.IsRecurring = true
		input.RecurringFreq = model.Frequency(strings.ToLower(recurring))
		if !input.RecurringFreq.Valid() {
			return service.TaskInput{}, fmt.Errorf("unknown frequency %q", recurring)
		}
	}
	return input, nil
}

// dateFlag expands the today and tomorrow shortcuts. Anything else is
// passed through for the task service to parse.
func dateFlag(value string, now time.Time) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "today":
		return planner.Today(now).String()
	case "tomorrow":
		return planner.Today(now.AddDate(0, 0, 1)).String()
	}
	return value
}
