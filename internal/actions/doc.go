// Package actions provides the behavior behind bgit's commands.
//
// The commit and watch subpackages drive the engine; this package holds what
// they share:
//   - Reading the working-tree file and mapping it to a repository path
//   - Building engine requests from flags, config and git identity
//   - Pushing the branch and opening pull requests after a commit
//
// Actions accept a runtime.Context, which provides the repository, logger and config.
package actions
