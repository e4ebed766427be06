package git

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	bgiterrors "bgit.dev/bgit/internal/errors"
)

// ErrBareRepository is returned when the discovered repository has no working tree
var ErrBareRepository = errors.New("bare repositories are not supported")

// Repository wraps a go-git repository
type Repository struct {
	*git.Repository
	path string
}

// OpenRepository opens the git repository containing path, searching parent
// directories for the .git directory. An empty path means the current directory.
func OpenRepository(path string) (*Repository, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = wd
	}

	// Resolve to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, bgiterrors.NewRepositoryNotFoundError(absPath, err)
	}

	// Get the worktree to find the root
	worktree, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil, fmt.Errorf("%s: %w", absPath, ErrBareRepository)
		}
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	return &Repository{
		Repository: repo,
		path:       worktree.Filesystem.Root(),
	}, nil
}

// GetRepoRoot returns the root directory of the repository's working tree
func (r *Repository) GetRepoRoot() string {
	return r.path
}

// Runner returns a git CLI runner rooted at the working tree
func (r *Repository) Runner() *CommandRunner {
	return NewCommandRunner(r.path)
}

// Store returns the object store for the repository. References are updated
// through `git update-ref` so the compare-and-swap also holds for packed refs.
func (r *Repository) Store() *Store {
	return &Store{
		storer: r.Storer,
		refs:   &commandRefs{runner: r.Runner(), storer: r.Storer},
	}
}
