// Package git provides low-level Git operations.
//
// It wraps go-git and git command execution and provides:
//   - Repository discovery from a path (upward search for .git)
//   - A content-addressed object Store (blobs, trees, commits) with
//     compare-and-swap reference updates
//   - Commit identity lookup from git config and environment
//   - Remote operations (fetch, push) and GitHub pull requests
//
// This package should be the only place where direct git commands are executed.
package git
