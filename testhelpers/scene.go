package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
)

// Scene is a temporary Git repository for one test.
type Scene struct {
	Dir  string
	Repo *GitRepo
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a repository in a fresh temp directory and runs setup on it.
// The directory is removed by t.Cleanup unless DEBUG is set.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "bgit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	// macOS temp dirs live behind a symlink; resolve it so paths compare equal
	if resolved, err := filepath.EvalSymlinks(tmpDir); err == nil {
		tmpDir = resolved
	}
	dir := filepath.Join(tmpDir, "repo")

	t.Cleanup(func() {
		if os.Getenv("DEBUG") == "" {
			os.RemoveAll(tmpDir)
		}
	})

	repo, err := NewGitRepo(dir)
	if err != nil {
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{
		Dir:  dir,
		Repo: repo,
	}

	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}
	return scene
}

// Path returns the absolute path of a repository-relative file
func (s *Scene) Path(relPath string) string {
	return filepath.Join(s.Dir, filepath.FromSlash(relPath))
}

// BasicSceneSetup creates a main branch with a README and a small source tree.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CommitFiles("initial", map[string]string{
		"README.md":    "# project\n",
		"src/lib.rs":   "pub fn lib() {}\n",
		"src/other.rs": "pub fn other() {}\n",
	})
}

// DocsBranchSetup adds a docs branch (not checked out) next to main.
func DocsBranchSetup(scene *Scene) error {
	if err := BasicSceneSetup(scene); err != nil {
		return err
	}
	if err := scene.Repo.CreateAndCheckoutBranch("docs"); err != nil {
		return err
	}
	if err := scene.Repo.CommitFiles("docs", map[string]string{"docs/index.md": "# docs\n"}); err != nil {
		return err
	}
	return scene.Repo.CheckoutBranch("main")
}
