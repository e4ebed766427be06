// Package testhelpers provides testing utilities for bgit,
// including a scene system, Git repository helpers, and custom assertions.
package testhelpers

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. Useful in test setup where errors are
// not expected.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectBranches asserts that the repository has exactly the expected local branches.
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	output, err := repo.RunGitCommandAndGetOutput("for-each-ref", "refs/heads/", "--format=%(refname:short)")
	require.NoError(t, err, "Failed to list branches")

	branches := splitLines(output)
	sort.Strings(branches)
	sorted := append([]string(nil), expected...)
	sort.Strings(sorted)

	require.Equal(t, sorted, branches, "Branches do not match")
}

// ExpectFileOnBranch asserts the content of path in branch's tip tree.
func ExpectFileOnBranch(t *testing.T, repo *GitRepo, branch, path, expected string) {
	t.Helper()

	content, err := repo.ShowFile("refs/heads/"+branch, path)
	require.NoError(t, err)
	require.Equal(t, expected, content, "content of %s on %s", path, branch)
}

// ExpectCommits asserts the subject lines on branch, newest first.
func ExpectCommits(t *testing.T, repo *GitRepo, branch string, expected []string) {
	t.Helper()

	messages, err := repo.CommitMessages("refs/heads/" + branch)
	require.NoError(t, err)
	require.Equal(t, expected, messages, "commits on %s", branch)
}

// ExpectCleanWorktree asserts that HEAD, the index and the working tree agree.
func ExpectCleanWorktree(t *testing.T, repo *GitRepo) {
	t.Helper()

	status, err := repo.Status()
	require.NoError(t, err)
	require.Empty(t, status, "working tree should be clean")
}
