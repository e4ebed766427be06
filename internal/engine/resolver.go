package engine

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	bgiterrors "bgit.dev/bgit/internal/errors"
)

// ResolutionKind says how the target branch was found
type ResolutionKind int

const (
	// BranchFound means the local branch exists
	BranchFound ResolutionKind = iota
	// BranchSeeding means the local branch is created at its remote-tracking tip
	BranchSeeding
	// BranchCreating means the local branch is created at HEAD
	BranchCreating
	// BranchOrphan means the branch starts with a parentless commit
	BranchOrphan
)

func (k ResolutionKind) String() string {
	switch k {
	case BranchFound:
		return "BranchFound"
	case BranchSeeding:
		return "BranchSeeding"
	case BranchCreating:
		return "BranchCreating"
	case BranchOrphan:
		return "BranchOrphan"
	default:
		return fmt.Sprintf("ResolutionKind(%d)", int(k))
	}
}

// ResolveOptions controls how a missing local branch may be materialised
type ResolveOptions struct {
	// TrackRemote seeds a missing local branch from <Remote>/<branch>
	TrackRemote bool
	// Remote is the remote consulted by TrackRemote; defaults to "origin"
	Remote string
	// CreateFromHead creates a missing branch at the current HEAD commit
	CreateFromHead bool
	// Orphan starts a missing branch with a parentless commit
	Orphan bool
}

// Resolution is the read-only outcome of resolving a branch
type Resolution struct {
	Branch string
	Ref    plumbing.ReferenceName
	Kind   ResolutionKind

	// Expected is the value of Ref observed during resolution (zero when absent).
	// The Commit Writer only swaps Ref if it still holds this value.
	Expected plumbing.Hash

	// Parent is the commit the new commit builds on; zero for an orphan branch
	Parent plumbing.Hash
	// BaseTree is Parent's tree; zero when there is no base content
	BaseTree plumbing.Hash

	// Source is where a created branch starts from (remote-tracking ref or HEAD)
	Source plumbing.ReferenceName
}

// NeedsCreate reports whether the local branch ref must be created at Parent
// before the new commit is attached
func (r *Resolution) NeedsCreate() bool {
	return r.Kind == BranchSeeding || r.Kind == BranchCreating
}

// ValidateBranchName checks that name can be used as refs/heads/<name>
func ValidateBranchName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("branch name cannot be empty")
	}
	if strings.HasPrefix(name, "refs/") {
		return fmt.Errorf("invalid branch name %q: pass the short name, not a full ref", name)
	}
	if err := plumbing.NewBranchReferenceName(name).Validate(); err != nil {
		return fmt.Errorf("invalid branch name %q: %w", name, err)
	}
	return nil
}

// Resolve maps branch to its tip commit and tree. It never modifies the store.
//
// Order: local branch, then <remote>/<branch> when TrackRemote is set, then HEAD
// when CreateFromHead is set, then an orphan when Orphan is set. Otherwise the
// result is a BranchNotFoundError.
func (e *Engine) Resolve(branch string, opts ResolveOptions) (*Resolution, error) {
	if err := ValidateBranchName(branch); err != nil {
		return nil, err
	}
	e.log.Debug("Resolving branch %s", branch)

	local := plumbing.NewBranchReferenceName(branch)
	res := &Resolution{Branch: branch, Ref: local}

	tip, found, err := e.store.Ref(local)
	if err != nil {
		return nil, err
	}
	if found {
		res.Kind = BranchFound
		res.Expected = tip
		return e.withBase(res, tip)
	}

	searched := []string{"locally"}

	if opts.TrackRemote {
		remote := opts.Remote
		if remote == "" {
			remote = "origin"
		}
		remoteRef := plumbing.NewRemoteReferenceName(remote, branch)
		tip, found, err := e.store.Ref(remoteRef)
		if err != nil {
			return nil, err
		}
		if found {
			res.Kind = BranchSeeding
			res.Source = remoteRef
			e.log.Debug("BranchSeeding: %s from %s at %s", branch, remoteRef.Short(), tip)
			return e.withBase(res, tip)
		}
		searched = append(searched, "on "+remote)
	}

	if opts.CreateFromHead {
		head, found, err := e.store.Ref(plumbing.HEAD)
		if err != nil {
			return nil, err
		}
		if found {
			res.Kind = BranchCreating
			res.Source = plumbing.HEAD
			e.log.Debug("BranchCreating: %s from HEAD at %s", branch, head)
			return e.withBase(res, head)
		}
		searched = append(searched, "at HEAD (HEAD has no commits)")
	}

	if opts.Orphan {
		res.Kind = BranchOrphan
		e.log.Debug("BranchOrphan: %s starts without a parent", branch)
		return res, nil
	}

	return nil, bgiterrors.NewBranchNotFoundError(branch, searched...)
}

// withBase fills the parent commit and base tree from tip
func (e *Engine) withBase(res *Resolution, tip plumbing.Hash) (*Resolution, error) {
	commit, err := e.store.Commit(tip)
	if err != nil {
		return nil, fmt.Errorf("resolving base for branch '%s': %w", res.Branch, err)
	}
	res.Parent = commit.Hash
	res.BaseTree = commit.TreeHash
	if res.Kind == BranchFound {
		e.log.Debug("BranchFound: %s at %s (tree %s)", res.Branch, tip, commit.TreeHash)
	}
	return res, nil
}
