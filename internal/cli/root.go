// Package cli implements the taskflow command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	userID  string
	noColor bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taskflow",
	Short: "Personal task planner",
	Long: `taskflow keeps a personal task list with due dates, priorities and
recurring tasks, and runs the Telegram bot that serves the same list.

Without --user the list is anonymous and lives in the local database.
With --user the list syncs with the remote store under that user id.

Quick start:
  taskflow add "Pay rent" --date 2025-02-01 --priority high
  taskflow list
  taskflow done 3f2a
  taskflow review
  taskflow bot                 Run the Telegram bot`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "sync with the remote store as this user")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newBotCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newDoneCmd())
	rootCmd.AddCommand(newReopenCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newReviewCmd())
}
