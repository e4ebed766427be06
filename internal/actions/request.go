package actions

import (
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-git/v5/plumbing"

	"bgit.dev/bgit/internal/engine"
	"bgit.dev/bgit/internal/runtime"
	"bgit.dev/bgit/internal/tui"
)

// BranchOptions are the branch-selection flags shared by commit and watch
type BranchOptions struct {
	Branch      string
	Remote      string
	TrackRemote bool
	Create      bool
	Orphan      bool
	NoFetch     bool
}

// RemoteName returns the flag value or the configured remote
func (o BranchOptions) RemoteName(ctx *runtime.Context) string {
	if o.Remote != "" {
		return o.Remote
	}
	return ctx.Config.RemoteName()
}

// ResolveOptions maps the flags onto engine resolution options
func (o BranchOptions) ResolveOptions(ctx *runtime.Context) engine.ResolveOptions {
	return engine.ResolveOptions{
		TrackRemote:    o.TrackRemote,
		Remote:         o.RemoteName(ctx),
		CreateFromHead: o.Create,
		Orphan:         o.Orphan,
	}
}

// FetchForSeeding refreshes remote-tracking refs when a missing local branch
// may be seeded from the remote. Failures only warn: a stale remote-tracking
// ref is still usable.
func FetchForSeeding(ctx *runtime.Context, opts BranchOptions) {
	if !opts.TrackRemote || opts.NoFetch || !ctx.Config.FetchBeforeSeeding() {
		return
	}
	_, found, err := ctx.Repo.Store().Ref(plumbing.NewBranchReferenceName(opts.Branch))
	if err != nil || found {
		return
	}
	remote := opts.RemoteName(ctx)
	ctx.Splog.Debug("Fetching %s to seed %s", remote, opts.Branch)
	if err := ctx.Repo.FetchRemote(ctx, remote); err != nil {
		ctx.Splog.Warn("Could not fetch %s, using the last known %s/%s: %v", remote, remote, opts.Branch, err)
	}
}

// WarnIfCheckedOut warns when the target branch is the one HEAD is on. The
// commit still goes through, but the index keeps the old content.
func WarnIfCheckedOut(ctx *runtime.Context, branch string) {
	current, err := ctx.Repo.CurrentBranch()
	if err != nil || current != branch {
		return
	}
	ctx.Splog.Warn("%s is checked out; its index and working tree are not updated, so git status will show the committed file as changed", branch)
}

// NewCommitRequest stamps the author and committer and builds the engine request
func NewCommitRequest(ctx *runtime.Context, opts BranchOptions, file *WorkingFile, message string) (engine.CommitRequest, error) {
	author, committer, err := ctx.Repo.Signatures(ctx.Now())
	if err != nil {
		return engine.CommitRequest{}, err
	}
	return engine.CommitRequest{
		Branch:    opts.Branch,
		Path:      file.RelPath,
		Content:   file.Content,
		Mode:      file.Mode,
		Message:   message,
		Author:    author,
		Committer: committer,
		Resolve:   opts.ResolveOptions(ctx),
	}, nil
}

// ReportCommit prints the outcome of a commit
func ReportCommit(splog *tui.Splog, result *engine.CommitResult) {
	switch result.Kind {
	case engine.BranchSeeding:
		splog.Info("Created branch %s from its remote-tracking branch", tui.ColorCyan(result.Branch))
	case engine.BranchCreating:
		splog.Info("Created branch %s from HEAD", tui.ColorCyan(result.Branch))
	case engine.BranchOrphan:
		splog.Info("Created orphan branch %s", tui.ColorCyan(result.Branch))
	}
	splog.Info("✅ Committed %s to %s", result.Path, tui.ColorCyan(result.Branch))
	splog.Info("commit %s", result.Commit)
	if !result.TreeChanged && result.Kind == engine.BranchFound {
		splog.Tip("%s already had this content; the new commit changes nothing.", result.Branch)
	}
}

// ReadMessageFile reads a commit message from path, or from stdin when path is "-"
func ReadMessageFile(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read commit message: %w", err)
	}
	msg := tui.StripComments(string(data))
	if msg == "" {
		return "", fmt.Errorf("commit message from %s is empty", path)
	}
	return msg, nil
}
