package cli

import (
	"github.com/spf13/cobra"

	"bgit.dev/bgit/internal/actions"
	"bgit.dev/bgit/internal/actions/commit"
	"bgit.dev/bgit/internal/cli/common"
	"bgit.dev/bgit/internal/runtime"
)

// addBranchFlags registers the branch-selection flags shared by commit and watch
func addBranchFlags(cmd *cobra.Command, opts *actions.BranchOptions) {
	cmd.Flags().StringVarP(&opts.Branch, "branch", "b", "", "Branch to commit to (required)")
	cmd.Flags().StringVar(&opts.Remote, "remote", "", "Remote to seed from and push to (default: config remote, then origin)")
	cmd.Flags().BoolVar(&opts.TrackRemote, "track-remote", false, "Create a missing local branch from its remote-tracking branch")
	cmd.Flags().BoolVar(&opts.Create, "create", false, "Create a missing branch at the current HEAD commit")
	cmd.Flags().BoolVar(&opts.Orphan, "orphan", false, "Create a missing branch with no history")
	cmd.Flags().BoolVar(&opts.NoFetch, "no-fetch", false, "Do not fetch before seeding from the remote")

	_ = cmd.MarkFlagRequired("branch")
	cmd.MarkFlagsMutuallyExclusive("create", "orphan")
	_ = cmd.RegisterFlagCompletionFunc("branch", common.CompleteBranches)
}

// newCommitCmd creates the commit command
func newCommitCmd() *cobra.Command {
	var opts commit.Options

	cmd := &cobra.Command{
		Use:   "commit <path>",
		Short: "Commit one working-tree file to a branch",
		Long: `Commit the working-tree content of <path> to --branch without checking it out.

The new commit's parent is the branch tip and its tree is the tip's tree with
only <path> replaced. HEAD, the index and the working tree are left alone. If
the branch moves while bgit is working, nothing is updated and the command fails.

Examples:
  bgit commit docs/index.md --branch docs
  bgit commit README.md -b release -m "Refresh README"
  bgit commit site/index.html -b gh-pages --orphan --push
  bgit commit CHANGELOG.md -b feature/x --track-remote --pr`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			return common.Run(cmd, func(ctx *runtime.Context) error {
				_, err := commit.Action(ctx, opts)
				return err
			})
		},
	}

	addBranchFlags(cmd, &opts.BranchOptions)
	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "Commit message (default: \"Update <path>\")")
	cmd.Flags().StringVarP(&opts.MessageFile, "file", "F", "", "Read the commit message from a file, - for stdin")
	cmd.Flags().BoolVarP(&opts.Edit, "edit", "e", false, "Edit the commit message in $EDITOR")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show what would be committed without writing anything")
	cmd.Flags().BoolVar(&opts.Push, "push", false, "Push the branch after committing")
	cmd.Flags().BoolVar(&opts.PR, "pr", false, "Push and open a GitHub pull request for the branch")
	cmd.Flags().StringVar(&opts.PRBase, "pr-base", "", "Base branch for --pr (default: config prBase, then main)")

	cmd.MarkFlagsMutuallyExclusive("message", "file")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "push")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "pr")

	return cmd
}
