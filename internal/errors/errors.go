// Package errors provides sentinel errors and custom error types for the bgit application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrRepositoryNotFound indicates that no git repository could be opened
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrBranchNotFound indicates that a branch does not exist
	ErrBranchNotFound = errors.New("branch not found")

	// ErrPathConflict indicates that a path segment has the wrong entry type in the base tree
	ErrPathConflict = errors.New("path conflict")

	// ErrConcurrentBranchMove indicates that a branch changed between resolution and update
	ErrConcurrentBranchMove = errors.New("branch moved concurrently")

	// ErrObjectStore indicates that reading or writing the object store failed
	ErrObjectStore = errors.New("object store failure")

	// ErrPushFailed indicates that pushing (or opening a pull request) failed after a commit
	ErrPushFailed = errors.New("push failed")
)

// RepositoryNotFoundError represents an error when repository discovery fails
type RepositoryNotFoundError struct {
	Path string
	Err  error
}

func (e *RepositoryNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("not a git repository (or any parent up to mount point): %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("not a git repository (or any parent up to mount point): %s", e.Path)
}

// Is returns true if the target error is ErrRepositoryNotFound
func (e *RepositoryNotFoundError) Is(target error) bool {
	return target == ErrRepositoryNotFound
}

func (e *RepositoryNotFoundError) Unwrap() error {
	return e.Err
}

// NewRepositoryNotFoundError creates a new RepositoryNotFoundError
func NewRepositoryNotFoundError(path string, err error) *RepositoryNotFoundError {
	return &RepositoryNotFoundError{Path: path, Err: err}
}

// BranchNotFoundError represents an error when a branch is not found
type BranchNotFoundError struct {
	BranchName string
	// Searched lists the places that were consulted, e.g. "locally" or "on origin"
	Searched []string
}

func (e *BranchNotFoundError) Error() string {
	if len(e.Searched) == 0 {
		return fmt.Sprintf("branch '%s' does not exist", e.BranchName)
	}
	return fmt.Sprintf("branch '%s' not found %s", e.BranchName, strings.Join(e.Searched, " or "))
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string, searched ...string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName, Searched: searched}
}

// PathConflictError represents an error when a path segment is a file where a
// directory is expected, or the other way around.
type PathConflictError struct {
	Path     string
	Segment  string
	Expected string
	Actual   string
}

func (e *PathConflictError) Error() string {
	return fmt.Sprintf("cannot write %s: %s is a %s in the branch tree, expected a %s", e.Path, e.Segment, e.Actual, e.Expected)
}

// Is returns true if the target error is ErrPathConflict
func (e *PathConflictError) Is(target error) bool {
	return target == ErrPathConflict
}

// NewPathConflictError creates a new PathConflictError
func NewPathConflictError(path, segment, expected, actual string) *PathConflictError {
	return &PathConflictError{
		Path:     path,
		Segment:  segment,
		Expected: expected,
		Actual:   actual,
	}
}

// ConcurrentBranchMoveError represents a failed compare-and-swap on a branch ref.
// Expected or Actual is empty when the ref was absent.
type ConcurrentBranchMoveError struct {
	BranchName string
	Expected   string
	Actual     string
}

func (e *ConcurrentBranchMoveError) Error() string {
	return fmt.Sprintf("branch '%s' moved concurrently: expected %s, found %s; nothing was updated, re-run to retry",
		e.BranchName, refValue(e.Expected), refValue(e.Actual))
}

// Is returns true if the target error is ErrConcurrentBranchMove
func (e *ConcurrentBranchMoveError) Is(target error) bool {
	return target == ErrConcurrentBranchMove
}

// NewConcurrentBranchMoveError creates a new ConcurrentBranchMoveError
func NewConcurrentBranchMoveError(branchName, expected, actual string) *ConcurrentBranchMoveError {
	return &ConcurrentBranchMoveError{
		BranchName: branchName,
		Expected:   expected,
		Actual:     actual,
	}
}

func refValue(sha string) string {
	if sha == "" {
		return "<absent>"
	}
	return sha
}

// ObjectStoreError represents a failed read or write against the object store
type ObjectStoreError struct {
	Op     string
	Object string
	Err    error
}

func (e *ObjectStoreError) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("object store: %s %s: %v", e.Op, e.Object, e.Err)
	}
	return fmt.Sprintf("object store: %s: %v", e.Op, e.Err)
}

// Is returns true if the target error is ErrObjectStore
func (e *ObjectStoreError) Is(target error) bool {
	return target == ErrObjectStore
}

func (e *ObjectStoreError) Unwrap() error {
	return e.Err
}

// NewObjectStoreError creates a new ObjectStoreError
func NewObjectStoreError(op, object string, err error) *ObjectStoreError {
	return &ObjectStoreError{Op: op, Object: object, Err: err}
}

// PushError represents a failure of the post-commit push or pull request step.
// The commit itself has already been written when this is returned.
type PushError struct {
	BranchName string
	Remote     string
	Commit     string
	Kind       string // "push" or "pr"
	Err        error
}

func (e *PushError) Error() string {
	what := "push of"
	if e.Kind == "pr" {
		what = "pull request for"
	}
	return fmt.Sprintf("%s %s to %s failed (commit %s is still in place locally): %v", what, e.BranchName, e.Remote, e.Commit, e.Err)
}

// Is returns true if the target error is ErrPushFailed
func (e *PushError) Is(target error) bool {
	return target == ErrPushFailed
}

func (e *PushError) Unwrap() error {
	return e.Err
}

// NewPushError creates a new PushError
func NewPushError(kind, branchName, remote, commit string, err error) *PushError {
	return &PushError{
		BranchName: branchName,
		Remote:     remote,
		Commit:     commit,
		Kind:       kind,
		Err:        err,
	}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
