// Package main is the entry point for the bookmark-engagement CLI.
package main

import (
	"os"

	"bookmark-engagement/cmd/cli/cmd"
	"bookmark-engagement/internal/logging"
)

func main() {
	defer logging.Sync()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
