package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	bgiterrors "bgit.dev/bgit/internal/errors"
)

// SplitPath validates a repository-relative, slash-separated path and returns its segments
func SplitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	if strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path %q must be relative to the repository root", path)
	}
	segments := strings.Split(path, "/")
	for _, seg := range segments {
		switch {
		case seg == "":
			return nil, fmt.Errorf("path %q contains an empty segment", path)
		case seg == "." || seg == "..":
			return nil, fmt.Errorf("path %q contains a relative segment %q", path, seg)
		case strings.EqualFold(seg, ".git"):
			return nil, fmt.Errorf("path %q cannot point inside .git", path)
		case strings.ContainsRune(seg, 0):
			return nil, fmt.Errorf("path %q contains a NUL byte", path)
		}
	}
	return segments, nil
}

// RebuildTree returns the id of a tree equal to base except that path holds
// blob with the given mode. Only the trees on the path from the root to the
// file are rewritten; every other entry keeps its id. A zero base stands for
// the empty tree. Intermediate trees are created as needed.
func (e *Engine) RebuildTree(base plumbing.Hash, path string, blob plumbing.Hash, mode filemode.FileMode) (plumbing.Hash, error) {
	segments, err := SplitPath(path)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	e.log.Debug("Rebuilding %d tree level(s) for %s", len(segments), path)
	return e.upsert(base, path, segments, 0, blob, mode)
}

// upsert rewrites the tree at depth so that segments[depth:] points at blob
func (e *Engine) upsert(treeHash plumbing.Hash, path string, segments []string, depth int, blob plumbing.Hash, mode filemode.FileMode) (plumbing.Hash, error) {
	var entries []object.TreeEntry
	if !treeHash.IsZero() {
		tree, err := e.store.Tree(treeHash)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = make([]object.TreeEntry, len(tree.Entries))
		copy(entries, tree.Entries)
	}

	name := segments[depth]
	walked := strings.Join(segments[:depth+1], "/")
	idx := -1
	for i := range entries {
		if entries[i].Name == name {
			idx = i
			break
		}
	}

	var entry object.TreeEntry
	if depth == len(segments)-1 {
		if idx >= 0 && (entries[idx].Mode == filemode.Dir || entries[idx].Mode == filemode.Submodule) {
			return plumbing.ZeroHash, bgiterrors.NewPathConflictError(path, walked, "file", modeKind(entries[idx].Mode))
		}
		entry = object.TreeEntry{Name: name, Mode: mode, Hash: blob}
	} else {
		subtree := plumbing.ZeroHash
		if idx >= 0 {
			if entries[idx].Mode != filemode.Dir {
				return plumbing.ZeroHash, bgiterrors.NewPathConflictError(path, walked, "directory", modeKind(entries[idx].Mode))
			}
			subtree = entries[idx].Hash
		}
		child, err := e.upsert(subtree, path, segments, depth+1, blob, mode)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entry = object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: child}
	}

	if idx >= 0 {
		entries[idx] = entry
	} else {
		entries = append(entries, entry)
	}
	SortEntries(entries)
	return e.store.WriteTree(entries)
}

// SortEntries orders tree entries the way git does: byte-wise by name, with
// directory names compared as if they ended in "/".
func SortEntries(entries []object.TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return sortKey(entries[i]) < sortKey(entries[j])
	})
}

func sortKey(entry object.TreeEntry) string {
	if entry.Mode == filemode.Dir {
		return entry.Name + "/"
	}
	return entry.Name
}

// FileAt returns the entry stored at path in the tree, or found=false when the
// tree has nothing there.
func (e *Engine) FileAt(treeHash plumbing.Hash, path string) (entry object.TreeEntry, found bool, err error) {
	segments, err := SplitPath(path)
	if err != nil {
		return object.TreeEntry{}, false, err
	}
	current := treeHash
	for i, seg := range segments {
		if current.IsZero() {
			return object.TreeEntry{}, false, nil
		}
		tree, err := e.store.Tree(current)
		if err != nil {
			return object.TreeEntry{}, false, err
		}
		var next *object.TreeEntry
		for j := range tree.Entries {
			if tree.Entries[j].Name == seg {
				next = &tree.Entries[j]
				break
			}
		}
		if next == nil {
			return object.TreeEntry{}, false, nil
		}
		if i == len(segments)-1 {
			return *next, true, nil
		}
		if next.Mode != filemode.Dir {
			return object.TreeEntry{}, false, nil
		}
		current = next.Hash
	}
	return object.TreeEntry{}, false, nil
}

func modeKind(mode filemode.FileMode) string {
	switch mode {
	case filemode.Dir:
		return "directory"
	case filemode.Submodule:
		return "submodule"
	case filemode.Symlink:
		return "symlink"
	case filemode.Executable:
		return "executable file"
	default:
		return "file"
	}
}
