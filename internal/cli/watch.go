package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bgit.dev/bgit/internal/actions/watch"
	"bgit.dev/bgit/internal/cli/common"
	"bgit.dev/bgit/internal/runtime"
)

// newWatchCmd creates the watch command
func newWatchCmd() *cobra.Command {
	var opts watch.Options

	cmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Commit a file to a branch every time it changes",
		Long: `Watch <path> and commit it to --branch whenever it is saved.

Changes are committed once the file has been quiet for --debounce. Saving the
same content again does not create a commit. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(sigCtx)

			return common.Run(cmd, func(ctx *runtime.Context) error {
				return watch.Action(ctx, opts)
			})
		},
	}

	addBranchFlags(cmd, &opts.BranchOptions)
	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "Commit message for every commit (default: \"Update <path>\")")
	cmd.Flags().BoolVar(&opts.Push, "push", false, "Push the branch after each commit")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watch.DefaultDebounce, "How long the file must be quiet before committing")

	return cmd
}
