package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bgiterrors "bgit.dev/bgit/internal/errors"
)

// PushBranch pushes the local branch to the same name on remote.
// Authentication is left to the user's git setup.
func PushBranch(ctx context.Context, runner *CommandRunner, remote, branchName string) error {
	refspec := fmt.Sprintf("%s:%s", branchName, branchName)
	_, err := runner.Run(ctx, "push", remote, refspec)
	if err == nil {
		return nil
	}

	var gitErr *bgiterrors.GitCommandError
	if errors.As(err, &gitErr) {
		stderr := gitErr.Stderr
		if strings.Contains(stderr, "non-fast-forward") || strings.Contains(stderr, "fetch first") {
			return fmt.Errorf("%s on %s has commits that are not in your local branch; fetch and integrate them, then push again: %w", branchName, remote, err)
		}
	}
	return fmt.Errorf("failed to push branch %s: %w", branchName, err)
}
