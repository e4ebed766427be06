package git

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// BranchNames returns local branch names plus the branch part of every
// remote-tracking ref, deduplicated and sorted
func (r *Repository) BranchNames() ([]string, error) {
	refs, err := r.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	defer refs.Close()

	seen := make(map[string]bool)
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		switch {
		case name.IsBranch():
			seen[name.Short()] = true
		case name.IsRemote():
			// refs/remotes/<remote>/<branch>
			_, branch, ok := strings.Cut(strings.TrimPrefix(name.String(), "refs/remotes/"), "/")
			if ok && branch != "HEAD" {
				seen[branch] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate references: %w", err)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CurrentBranch returns the branch HEAD points at
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not on a branch")
	}
	return head.Name().Short(), nil
}
