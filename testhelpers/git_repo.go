package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitRepo represents a Git repository for testing purposes.
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a new Git repository in the specified directory using 'git init'.
func NewGitRepo(dir string) (*GitRepo, error) {
	repo := &GitRepo{Dir: dir}

	// Use git -c flags to avoid reading global config and set local configs
	cmd := exec.Command("git", "-c", "init.defaultBranch=main", "-c", "core.autocrlf=false", "init", dir, "-b", "main")
	cmd.Env = gitEnv()
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("failed to init repo: %w, output: %s", err, string(output))
	}

	// Configure Git user (required for commits)
	if err := repo.runGitCommand("config", "user.name", "Test User"); err != nil {
		return nil, err
	}
	if err := repo.runGitCommand("config", "user.email", "test@example.com"); err != nil {
		return nil, err
	}
	return repo, nil
}

// gitEnv isolates test git commands from the developer's global config
func gitEnv() []string {
	return append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1")
}

// runGitCommand executes a git command in the repository directory.
func (r *GitRepo) runGitCommand(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = gitEnv()
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s failed: %w, output: %s", strings.Join(args, " "), err, string(output))
	}
	return nil
}

// RunGitCommand executes a git command and returns an error if it fails.
func (r *GitRepo) RunGitCommand(args ...string) error {
	return r.runGitCommand(args...)
}

// RunGitCommandAndGetOutput executes a git command and returns its trimmed output.
func (r *GitRepo) RunGitCommandAndGetOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = gitEnv()
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(output)), nil
}

// WriteFile writes content to a path relative to the repository root,
// creating parent directories as needed. Nothing is staged.
func (r *GitRepo) WriteFile(relPath, content string) error {
	return r.WriteFileMode(relPath, content, 0600)
}

// WriteFileMode is WriteFile with an explicit permission mode
func (r *GitRepo) WriteFileMode(relPath, content string, mode os.FileMode) error {
	filePath := filepath.Join(r.Dir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(content), mode); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	// WriteFile does not change the mode of an existing file
	return os.Chmod(filePath, mode)
}

// CommitFiles writes files, stages everything and commits on the checked-out branch.
func (r *GitRepo) CommitFiles(message string, files map[string]string) error {
	for path, content := range files {
		if err := r.WriteFile(path, content); err != nil {
			return err
		}
	}
	if err := r.runGitCommand("add", "-A"); err != nil {
		return err
	}
	return r.runGitCommand("commit", "-m", message)
}

// CreateBranch creates a new branch without checking it out.
func (r *GitRepo) CreateBranch(name string) error {
	return r.runGitCommand("branch", name)
}

// CreateAndCheckoutBranch creates and checks out a new branch.
func (r *GitRepo) CreateAndCheckoutBranch(name string) error {
	return r.runGitCommand("checkout", "-b", name)
}

// CheckoutBranch checks out a branch.
func (r *GitRepo) CheckoutBranch(name string) error {
	return r.runGitCommand("checkout", name)
}

// DeleteBranch deletes a branch.
func (r *GitRepo) DeleteBranch(name string) error {
	return r.runGitCommand("branch", "-D", name)
}

// CurrentBranchName returns the name of the current branch.
func (r *GitRepo) CurrentBranchName() (string, error) {
	return r.RunGitCommandAndGetOutput("branch", "--show-current")
}

// GetRevision returns the SHA of a revision (branch, tag, or commit reference).
func (r *GitRepo) GetRevision(rev string) (string, error) {
	return r.RunGitCommandAndGetOutput("rev-parse", "--verify", "--quiet", rev)
}

// RefExists reports whether a fully-qualified ref exists
func (r *GitRepo) RefExists(ref string) bool {
	return r.runGitCommand("show-ref", "--verify", "--quiet", ref) == nil
}

// ShowFile returns the content of path in the tree of rev
func (r *GitRepo) ShowFile(rev, path string) (string, error) {
	cmd := exec.Command("git", "show", rev+":"+path)
	cmd.Dir = r.Dir
	cmd.Env = gitEnv()
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git show %s:%s failed: %w", rev, path, err)
	}
	return string(output), nil
}

// TreeEntryMode returns the mode string (e.g. 100755) of path in rev's tree
func (r *GitRepo) TreeEntryMode(rev, path string) (string, error) {
	out, err := r.RunGitCommandAndGetOutput("ls-tree", rev, "--", path)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", fmt.Errorf("%s not found in %s", path, rev)
	}
	return fields[0], nil
}

// CommitMessages returns the subject lines on rev, newest first
func (r *GitRepo) CommitMessages(rev string) ([]string, error) {
	output, err := r.RunGitCommandAndGetOutput("log", "--format=%s", rev)
	if err != nil {
		return nil, err
	}
	return splitLines(output), nil
}

// Status returns `git status --porcelain` output
func (r *GitRepo) Status() (string, error) {
	return r.RunGitCommandAndGetOutput("status", "--porcelain")
}

// splitLines splits a string by newlines and returns non-empty lines.
func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}

// CreateBareRemote creates a bare git repository to act as a remote.
// Returns the path to the bare repository.
func (r *GitRepo) CreateBareRemote(name string) (string, error) {
	// A sibling directory keeps each test's remote unique
	bareDir := r.Dir + "-" + name + ".git"

	cmd := exec.Command("git", "init", "--bare", bareDir)
	cmd.Env = gitEnv()
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to create bare repo: %w", err)
	}

	if err := r.runGitCommand("remote", "add", name, bareDir); err != nil {
		return "", fmt.Errorf("failed to add remote: %w", err)
	}
	return bareDir, nil
}

// PushBranch pushes a branch to a remote.
func (r *GitRepo) PushBranch(remote, branch string) error {
	return r.runGitCommand("push", "-u", remote, branch)
}

// Fetch fetches from a remote
func (r *GitRepo) Fetch(remote string) error {
	return r.runGitCommand("fetch", remote)
}

// RemoteRevision returns the SHA of branch in a bare remote repository
func RemoteRevision(bareDir, branch string) (string, error) {
	cmd := exec.Command("git", "--git-dir", bareDir, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	cmd.Env = gitEnv()
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("branch %s not found in %s: %w", branch, bareDir, err)
	}
	return strings.TrimSpace(string(output)), nil
}
