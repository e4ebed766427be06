package engine

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CommitRequest describes one file to commit onto one branch
type CommitRequest struct {
	Branch string
	// Path is relative to the repository root and slash-separated
	Path    string
	Content []byte
	// Mode is the tree entry mode; zero means filemode.Regular
	Mode filemode.FileMode
	// Message defaults to "Update <Path>"
	Message   string
	Author    object.Signature
	Committer object.Signature
	Resolve   ResolveOptions
	// SkipUnchanged returns without committing when the rebuilt tree equals the parent's
	SkipUnchanged bool
}

// Plan is the outcome of resolving and rebuilding, before any reference moves
type Plan struct {
	Resolution *Resolution
	Blob       plumbing.Hash
	Tree       plumbing.Hash
	// TreeChanged is false when the new root tree is identical to the base tree
	TreeChanged bool
}

// CommitResult reports what a commit changed
type CommitResult struct {
	Branch      string
	Path        string
	Kind        ResolutionKind
	Blob        plumbing.Hash
	Tree        plumbing.Hash
	Parent      plumbing.Hash
	Commit      plumbing.Hash
	TreeChanged bool
	// Skipped is set when SkipUnchanged suppressed the commit
	Skipped bool
}

// DefaultMessage is the commit message used when none is given
func DefaultMessage(path string) string {
	return fmt.Sprintf("Update %s", path)
}

// Plan resolves the branch and writes the blob and trees for req without
// touching any reference
func (e *Engine) Plan(req CommitRequest) (*Plan, error) {
	if _, err := SplitPath(req.Path); err != nil {
		return nil, err
	}
	res, err := e.Resolve(req.Branch, req.Resolve)
	if err != nil {
		return nil, err
	}

	blob, err := e.store.WriteBlob(req.Content)
	if err != nil {
		return nil, err
	}

	mode := req.Mode
	if mode == filemode.Empty {
		mode = filemode.Regular
	}
	tree, err := e.RebuildTree(res.BaseTree, req.Path, blob, mode)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Resolution:  res,
		Blob:        blob,
		Tree:        tree,
		TreeChanged: tree != res.BaseTree,
	}, nil
}

// CommitFile runs the full pipeline: resolve, rebuild, commit and move the branch
func (e *Engine) CommitFile(ctx context.Context, req CommitRequest) (*CommitResult, error) {
	plan, err := e.Plan(req)
	if err != nil {
		return nil, err
	}
	res := plan.Resolution

	result := &CommitResult{
		Branch:      req.Branch,
		Path:        req.Path,
		Kind:        res.Kind,
		Blob:        plan.Blob,
		Tree:        plan.Tree,
		Parent:      res.Parent,
		TreeChanged: plan.TreeChanged,
	}
	if req.SkipUnchanged && !plan.TreeChanged && res.Kind == BranchFound {
		e.log.Debug("Tree unchanged on %s, skipping commit", req.Branch)
		result.Skipped = true
		return result, nil
	}

	msg := req.Message
	if msg == "" {
		msg = DefaultMessage(req.Path)
	}

	hash, err := e.WriteCommit(ctx, res, CommitSpec{
		Tree:      plan.Tree,
		Message:   msg,
		Author:    req.Author,
		Committer: req.Committer,
	})
	if err != nil {
		return nil, err
	}
	result.Commit = hash
	return result, nil
}
