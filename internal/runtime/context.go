package runtime

import (
	"context"
	"fmt"
	"os"
	"time"

	"bgit.dev/bgit/internal/config"
	"bgit.dev/bgit/internal/engine"
	"bgit.dev/bgit/internal/git"
	"bgit.dev/bgit/internal/tui"
)

// Options controls how a Context is built
type Options struct {
	// RepoPath is where repository discovery starts; empty means WorkDir
	RepoPath string
	// WorkDir resolves relative file arguments; empty means the process cwd
	WorkDir string
	Debug   bool
	// Quiet silences console output except warnings and errors
	Quiet bool
	// Splog overrides the logger (tests)
	Splog *tui.Splog
}

// Context provides access to the repository, engine and output for commands
type Context struct {
	context.Context

	Repo     *git.Repository
	Splog    *tui.Splog
	Config   *config.RepoConfig
	RepoRoot string
	WorkDir  string

	// Now stamps author and committer signatures
	Now func() time.Time
}

// NewContext opens the repository and loads its configuration
func NewContext(ctx context.Context, opts Options) (*Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		workDir = wd
	}

	splog := opts.Splog
	if splog == nil {
		var err error
		splog, err = tui.NewSplogWithOptions(tui.SplogOptions{
			Debug:   opts.Debug || os.Getenv("DEBUG") != "",
			LogFile: tui.LogFilePath(),
		})
		if err != nil {
			return nil, err
		}
	}

	if opts.Quiet {
		splog.SetQuiet(true)
	}

	repoPath := opts.RepoPath
	if repoPath == "" {
		repoPath = workDir
	}
	repo, err := git.OpenRepository(repoPath)
	if err != nil {
		return nil, err
	}

	cfg, err := config.GetRepoConfig(repo.GetRepoRoot())
	if err != nil {
		return nil, err
	}

	splog.Debug("Repository root: %s", repo.GetRepoRoot())

	return &Context{
		Context:  ctx,
		Repo:     repo,
		Splog:    splog,
		Config:   cfg,
		RepoRoot: repo.GetRepoRoot(),
		WorkDir:  workDir,
		Now:      time.Now,
	}, nil
}

// Engine returns an engine over the repository's object store. With dryRun
// set, new objects stay in memory and no reference can change.
func (c *Context) Engine(dryRun bool) *engine.Engine {
	var store engine.ObjectStore = c.Repo.Store()
	if dryRun {
		store = git.NewDryRunStore(c.Repo.Store())
	}
	return engine.NewEngine(store, engine.WithLogger(c.Splog))
}

// Close releases the log file, if any
func (c *Context) Close() error {
	return c.Splog.Close()
}
