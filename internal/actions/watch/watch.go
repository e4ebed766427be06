package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"bgit.dev/bgit/internal/actions"
	"bgit.dev/bgit/internal/engine"
	bgiterrors "bgit.dev/bgit/internal/errors"
	"bgit.dev/bgit/internal/runtime"
)

// DefaultDebounce is how long the file must stay quiet before it is committed
const DefaultDebounce = 500 * time.Millisecond

// Options contains options for the watch command
type Options struct {
	actions.BranchOptions

	Path string
	// Message defaults to "Update <path>" for every commit
	Message  string
	Push     bool
	Debounce time.Duration

	// Ready is called once the watcher is running and the initial sync is done
	Ready func()
	// OnCommit is called after every commit that moved the branch
	OnCommit func(*engine.CommitResult)
}

// Action watches one working-tree file and commits it to the branch each time
// it settles after a change. It returns when ctx is canceled.
func Action(ctx *runtime.Context, opts Options) error {
	splog := ctx.Splog

	if opts.Branch == "" {
		return fmt.Errorf("a target branch is required (--branch)")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	absPath, relPath, err := actions.ResolvePath(ctx.RepoRoot, ctx.WorkDir, opts.Path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are still seen
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	actions.WarnIfCheckedOut(ctx, opts.Branch)

	w := &fileWatcher{ctx: ctx, opts: opts}
	if err := w.sync(); err != nil {
		return err
	}
	splog.Info("👀 Watching %s, committing to %s (Ctrl+C to stop)", relPath, opts.Branch)
	if opts.Ready != nil {
		opts.Ready()
	}

	// Armed by the first change event
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			splog.Debug("Stopped watching %s", relPath)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			splog.Debug("%s: %s", event.Op, relPath)
			timer.Reset(opts.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			splog.Warn("File watcher error: %v", err)

		case <-timer.C:
			if err := w.sync(); err != nil {
				return err
			}
		}
	}
}

// fileWatcher runs the commit pipeline for the watched file
type fileWatcher struct {
	ctx  *runtime.Context
	opts Options
}

// sync commits the file if its content differs from the branch. Races and
// transient read or push failures are logged and left for the next change.
func (w *fileWatcher) sync() error {
	ctx, opts := w.ctx, w.opts

	file, err := actions.LoadFile(ctx.RepoRoot, ctx.WorkDir, opts.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			ctx.Splog.Debug("%s is missing, waiting for it to reappear", opts.Path)
		} else {
			ctx.Splog.Warn("%v", err)
		}
		return nil
	}

	actions.FetchForSeeding(ctx, opts.BranchOptions)

	req, err := actions.NewCommitRequest(ctx, opts.BranchOptions, file, opts.Message)
	if err != nil {
		return err
	}
	req.SkipUnchanged = true

	result, err := ctx.Engine(false).CommitFile(ctx, req)
	switch {
	case errors.Is(err, bgiterrors.ErrConcurrentBranchMove):
		ctx.Splog.Warn("%v", err)
		return nil
	case err != nil:
		return err
	case result.Skipped:
		ctx.Splog.Debug("%s unchanged on %s", file.RelPath, opts.Branch)
		return nil
	}

	actions.ReportCommit(ctx.Splog, result)
	if opts.OnCommit != nil {
		opts.OnCommit(result)
	}

	if opts.Push || ctx.Config.PushByDefault() {
		if _, err := actions.Publish(ctx, actions.PublishOptions{
			Branch:  opts.Branch,
			Remote:  opts.RemoteName(ctx),
			Commit:  result.Commit.String(),
			Message: req.Message,
		}); err != nil {
			ctx.Splog.Warn("%v", err)
		}
	}
	return nil
}
