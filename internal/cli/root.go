package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bgit",
		Short: "Commit a working-tree file to any branch without checking it out",
		Long: `bgit commits a single file from your working tree to any branch, without
switching branches, touching the index or changing HEAD.

Only the given path changes on the target branch; every other file keeps the
content it already has there.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("repo", "C", "", "Path inside the repository to operate on (default: current directory)")
	rootCmd.PersistentFlags().Bool("debug", false, "Print debug output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only print warnings and errors")

	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd(version, commit, date))

	return rootCmd
}

// newVersionCmd creates the version command
func newVersionCmd(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bgit version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bgit %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		},
	}
}
