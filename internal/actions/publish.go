package actions

import (
	"strings"

	bgiterrors "bgit.dev/bgit/internal/errors"
	"bgit.dev/bgit/internal/git"
	"bgit.dev/bgit/internal/runtime"
	"bgit.dev/bgit/internal/tui"
)

// PublishOptions describes where a fresh commit goes after it is written
type PublishOptions struct {
	Branch  string
	Remote  string
	Commit  string
	Message string
	// OpenPR opens (or finds) a pull request from Branch into PRBase
	OpenPR bool
	PRBase string
}

// Publish pushes the branch and optionally opens a pull request. Errors are
// PushErrors; the local commit is never rolled back.
func Publish(ctx *runtime.Context, opts PublishOptions) (*git.PullRequestInfo, error) {
	splog := ctx.Splog

	splog.Debug("Pushing %s to %s", opts.Branch, opts.Remote)
	if err := git.PushBranch(ctx, ctx.Repo.Runner(), opts.Remote, opts.Branch); err != nil {
		return nil, bgiterrors.NewPushError("push", opts.Branch, opts.Remote, opts.Commit, err)
	}
	splog.Info("⬆️  Pushed %s to %s", tui.ColorCyan(opts.Branch), opts.Remote)

	if !opts.OpenPR {
		return nil, nil
	}

	pr, err := openPullRequest(ctx, opts)
	if err != nil {
		return nil, bgiterrors.NewPushError("pr", opts.Branch, opts.Remote, opts.Commit, err)
	}
	if pr.Existing {
		splog.Info("Pull request #%d is already open: %s", pr.Number, pr.URL)
	} else {
		splog.Info("🔗 Opened pull request #%d: %s", pr.Number, pr.URL)
	}
	return pr, nil
}

func openPullRequest(ctx *runtime.Context, opts PublishOptions) (*git.PullRequestInfo, error) {
	url, err := ctx.Repo.RemoteURL(opts.Remote)
	if err != nil {
		return nil, err
	}
	info, err := git.ParseRemoteURL(url)
	if err != nil {
		return nil, err
	}
	token, err := git.GetGitHubToken(ctx)
	if err != nil {
		return nil, err
	}
	client, err := git.NewGitHubClient(ctx, info, token)
	if err != nil {
		return nil, err
	}

	base := opts.PRBase
	if base == "" {
		base = ctx.Config.PRBaseBranch()
	}
	title, body := SplitMessage(opts.Message)
	return client.OpenPullRequest(ctx, git.CreatePROptions{
		Title: title,
		Body:  body,
		Head:  opts.Branch,
		Base:  base,
	})
}

// SplitMessage returns the subject line and the remaining body of a commit message
func SplitMessage(message string) (title, body string) {
	message = strings.TrimSpace(message)
	title, body, _ = strings.Cut(message, "\n")
	return strings.TrimSpace(title), strings.TrimSpace(body)
}
