// Package main provides the entry point for the taskflow CLI and bot.
package main

import (
	"os"

	"taskflow/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
