// Package common provides shared helper functions for CLI commands.
package common

import (
	"github.com/spf13/cobra"

	"bgit.dev/bgit/internal/git"
	"bgit.dev/bgit/internal/runtime"
)

// Run builds a runtime context from the global flags and hands it to fn.
// The context is closed when fn returns.
func Run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	repoPath, _ := cmd.Flags().GetString("repo")
	debug, _ := cmd.Flags().GetBool("debug")
	quiet, _ := cmd.Flags().GetBool("quiet")

	ctx, err := runtime.NewContext(cmd.Context(), runtime.Options{
		RepoPath: repoPath,
		Debug:    debug,
		Quiet:    quiet,
	})
	if err != nil {
		return err
	}
	defer ctx.Close()

	return fn(ctx)
}

// CompleteBranches is a helper for RegisterFlagCompletionFunc that returns
// local and remote-tracking branch names.
func CompleteBranches(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	repoPath, _ := cmd.Flags().GetString("repo")
	repo, err := git.OpenRepository(repoPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	branches, err := repo.BranchNames()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return branches, cobra.ShellCompDirectiveNoFileComp
}
