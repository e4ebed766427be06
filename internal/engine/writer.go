package engine

import (
	"context"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	bgiterrors "bgit.dev/bgit/internal/errors"
)

// CommitSpec is the content of the commit to create
type CommitSpec struct {
	Tree      plumbing.Hash
	Message   string
	Author    object.Signature
	Committer object.Signature
}

// WriteCommit creates the commit described by c on top of res and moves
// the branch reference to it.
//
// A seeded or created branch is first pointed at its parent. The reference is
// read again right before the swap; if it no longer holds the resolved value
// the commit is left unreferenced and a ConcurrentBranchMoveError is returned.
func (e *Engine) WriteCommit(ctx context.Context, res *Resolution, c CommitSpec) (plumbing.Hash, error) {
	expected := res.Expected
	if res.NeedsCreate() {
		e.log.Debug("Creating %s at %s", res.Ref.Short(), res.Parent)
		if err := e.store.UpdateRef(ctx, res.Ref, plumbing.ZeroHash, res.Parent); err != nil {
			return plumbing.ZeroHash, err
		}
		expected = res.Parent
	}

	commit := &object.Commit{
		Author:    c.Author,
		Committer: c.Committer,
		Message:   normalizeMessage(c.Message),
		TreeHash:  c.Tree,
	}
	if !res.Parent.IsZero() {
		commit.ParentHashes = []plumbing.Hash{res.Parent}
	}

	e.log.Debug("Committing tree %s on %s", c.Tree, res.Ref.Short())
	hash, err := e.store.WriteCommit(commit)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	current, found, err := e.store.Ref(res.Ref)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if !refHolds(expected, current, found) {
		actual := ""
		if found {
			actual = current.String()
		}
		return plumbing.ZeroHash, bgiterrors.NewConcurrentBranchMoveError(res.Branch, hashString(expected), actual)
	}

	if err := e.store.UpdateRef(ctx, res.Ref, expected, hash); err != nil {
		return plumbing.ZeroHash, err
	}
	e.log.Debug("Updated %s: %s -> %s", res.Ref.Short(), hashString(expected), hash)
	return hash, nil
}

func refHolds(expected, current plumbing.Hash, found bool) bool {
	if expected.IsZero() {
		return !found
	}
	return found && current == expected
}

func hashString(h plumbing.Hash) string {
	if h.IsZero() {
		return ""
	}
	return h.String()
}

// normalizeMessage ends the message with exactly one newline, as git commit does
func normalizeMessage(msg string) string {
	return strings.TrimRight(msg, "\n") + "\n"
}
