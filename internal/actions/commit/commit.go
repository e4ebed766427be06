package commit

import (
	"errors"
	"fmt"

	"bgit.dev/bgit/internal/actions"
	"bgit.dev/bgit/internal/engine"
	bgiterrors "bgit.dev/bgit/internal/errors"
	"bgit.dev/bgit/internal/git"
	"bgit.dev/bgit/internal/runtime"
	"bgit.dev/bgit/internal/tui"
)

// Options contains options for the commit command
type Options struct {
	actions.BranchOptions

	Path    string
	Message string
	// MessageFile reads the message from a file, "-" for stdin
	MessageFile string
	// Edit opens the message in the editor before committing
	Edit bool

	DryRun bool
	Push   bool
	PR     bool
	PRBase string
}

// Result reports what the command did
type Result struct {
	Commit      *engine.CommitResult
	Plan        *engine.Plan
	Diff        string
	PullRequest *git.PullRequestInfo
}

// Action commits one working-tree file onto a branch without checking it out
func Action(ctx *runtime.Context, opts Options) (*Result, error) {
	splog := ctx.Splog

	if opts.Branch == "" {
		return nil, fmt.Errorf("a target branch is required (--branch)")
	}
	if opts.Create && opts.Orphan {
		return nil, fmt.Errorf("--create and --orphan cannot be used together")
	}

	file, err := actions.LoadFile(ctx.RepoRoot, ctx.WorkDir, opts.Path)
	if err != nil {
		return nil, err
	}
	splog.Debug("Committing %s (%d bytes, mode %s) to %s", file.RelPath, len(file.Content), file.Mode, opts.Branch)

	message, err := commitMessage(opts, file.RelPath)
	if err != nil {
		return nil, err
	}

	actions.FetchForSeeding(ctx, opts.BranchOptions)
	if !opts.DryRun {
		actions.WarnIfCheckedOut(ctx, opts.Branch)
	}

	req, err := actions.NewCommitRequest(ctx, opts.BranchOptions, file, message)
	if err != nil {
		return nil, err
	}
	eng := ctx.Engine(opts.DryRun)

	if opts.DryRun {
		return dryRun(ctx, eng, req)
	}

	result, err := eng.CommitFile(ctx, req)
	if errors.Is(err, bgiterrors.ErrBranchNotFound) && !opts.Orphan && !opts.Create && tui.Interactive() {
		create, promptErr := tui.PromptConfirm(fmt.Sprintf("Branch '%s' does not exist. Create it from HEAD?", opts.Branch), false)
		if promptErr == nil && create {
			req.Resolve.CreateFromHead = true
			result, err = eng.CommitFile(ctx, req)
		}
	}
	if err != nil {
		return nil, err
	}

	actions.ReportCommit(splog, result)
	out := &Result{Commit: result}

	if opts.Push || opts.PR || ctx.Config.PushByDefault() {
		pr, err := actions.Publish(ctx, actions.PublishOptions{
			Branch:  opts.Branch,
			Remote:  opts.RemoteName(ctx),
			Commit:  result.Commit.String(),
			Message: req.Message,
			OpenPR:  opts.PR,
			PRBase:  opts.PRBase,
		})
		out.PullRequest = pr
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// commitMessage picks the message from the flags, falling back to "Update <path>"
func commitMessage(opts Options, relPath string) (string, error) {
	message := opts.Message
	if opts.MessageFile != "" {
		if message != "" {
			return "", fmt.Errorf("--message and --file cannot be used together")
		}
		fromFile, err := actions.ReadMessageFile(opts.MessageFile)
		if err != nil {
			return "", err
		}
		message = fromFile
	}
	if message == "" {
		message = engine.DefaultMessage(relPath)
	}
	if opts.Edit {
		return tui.PromptCommitMessage(message)
	}
	return message, nil
}
