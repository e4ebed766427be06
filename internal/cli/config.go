package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bgit.dev/bgit/internal/cli/common"
	"bgit.dev/bgit/internal/config"
	"bgit.dev/bgit/internal/runtime"
)

// newConfigCmd creates the config command
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get and set repository configuration",
		Long: fmt.Sprintf(`Get and set repository configuration values, stored in .git/.bgit_config.

Keys: %s

Examples:
  bgit config get remote
  bgit config set push true
  bgit config set pr-base develop`, strings.Join(config.Keys(), ", ")),
	}

	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

// newConfigGetCmd creates the config get command
func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "get <key>",
		Short:     "Get a configuration value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				value, err := config.GetValue(ctx.RepoRoot, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			})
		},
	}
}

// newConfigSetCmd creates the config set command
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, func(ctx *runtime.Context) error {
				if err := config.SetValue(ctx.RepoRoot, args[0], args[1]); err != nil {
					return err
				}
				ctx.Splog.Info("Set %s to: %s", args[0], args[1])
				return nil
			})
		},
	}
}
