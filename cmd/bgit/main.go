package main

import (
	"context"
	"os"

	"bgit.dev/bgit/internal/cli"
	"bgit.dev/bgit/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cli.NewRootCmd(version, commit, date)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		tui.NewSplog().Error("%v", err)
		os.Exit(1)
	}
}
