package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"

	"bgit.dev/bgit/internal/engine"
	bgiterrors "bgit.dev/bgit/internal/errors"
	"bgit.dev/bgit/internal/git"
)

var testSig = object.Signature{
	Name:  "Test User",
	Email: "test@example.com",
	When:  time.Unix(1700000000, 0).UTC(),
}

// newTestEngine returns an engine over an in-memory store
func newTestEngine(t *testing.T) (*engine.Engine, *git.Store) {
	t.Helper()
	store := git.NewStore(memory.NewStorage())
	return engine.NewEngine(store), store
}

// seedCommit writes files into a fresh tree, commits it on top of parent and
// points ref at the commit
func seedCommit(t *testing.T, eng *engine.Engine, store *git.Store, ref plumbing.ReferenceName, parent plumbing.Hash, files map[string]string) plumbing.Hash {
	t.Helper()
	tree := plumbing.ZeroHash
	if !parent.IsZero() {
		c, err := store.Commit(parent)
		require.NoError(t, err)
		tree = c.TreeHash
	}
	for path, content := range files {
		blob, err := store.WriteBlob([]byte(content))
		require.NoError(t, err)
		tree, err = eng.RebuildTree(tree, path, blob, filemode.Regular)
		require.NoError(t, err)
	}
	commit := &object.Commit{
		Author:    testSig,
		Committer: testSig,
		Message:   "seed\n",
		TreeHash:  tree,
	}
	if !parent.IsZero() {
		commit.ParentHashes = []plumbing.Hash{parent}
	}
	hash, err := store.WriteCommit(commit)
	require.NoError(t, err)
	require.NoError(t, store.Storer().SetReference(plumbing.NewHashReference(ref, hash)))
	return hash
}

func entryOf(t *testing.T, store *git.Store, tree plumbing.Hash, name string) (object.TreeEntry, bool) {
	t.Helper()
	tr, err := store.Tree(tree)
	require.NoError(t, err)
	for _, e := range tr.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return object.TreeEntry{}, false
}

func treeOf(t *testing.T, store *git.Store, commit plumbing.Hash) plumbing.Hash {
	t.Helper()
	c, err := store.Commit(commit)
	require.NoError(t, err)
	return c.TreeHash
}

func refOf(t *testing.T, store *git.Store, ref plumbing.ReferenceName) plumbing.Hash {
	t.Helper()
	hash, found, err := store.Ref(ref)
	require.NoError(t, err)
	require.True(t, found, "ref %s should exist", ref)
	return hash
}

func request(branch, path, content string) engine.CommitRequest {
	return engine.CommitRequest{
		Branch:    branch,
		Path:      path,
		Content:   []byte(content),
		Author:    testSig,
		Committer: testSig,
	}
}

func TestCommitFile(t *testing.T) {
	t.Run("rewrites only the path to the file", func(t *testing.T) {
		eng, store := newTestEngine(t)
		main := plumbing.NewBranchReferenceName("main")
		tip := seedCommit(t, eng, store, main, plumbing.ZeroHash, map[string]string{
			"README.md":    "readme\n",
			"src/lib.rs":   "old\n",
			"src/other.rs": "other\n",
			"docs/a.md":    "a\n",
		})
		baseTree := treeOf(t, store, tip)

		result, err := eng.CommitFile(context.Background(), request("main", "src/lib.rs", "new\n"))
		require.NoError(t, err)
		require.Equal(t, engine.BranchFound, result.Kind)
		require.Equal(t, tip, result.Parent)
		require.True(t, result.TreeChanged)
		require.Equal(t, result.Commit, refOf(t, store, main))

		commit, err := store.Commit(result.Commit)
		require.NoError(t, err)
		require.Equal(t, []plumbing.Hash{tip}, commit.ParentHashes)
		require.Equal(t, "Update src/lib.rs\n", commit.Message)
		require.Equal(t, result.Tree, commit.TreeHash)

		// Siblings keep their ids
		for _, name := range []string{"README.md", "docs"} {
			before, ok := entryOf(t, store, baseTree, name)
			require.True(t, ok)
			after, ok := entryOf(t, store, result.Tree, name)
			require.True(t, ok)
			require.Equal(t, before.Hash, after.Hash, name)
		}

		oldSrc, _ := entryOf(t, store, baseTree, "src")
		newSrc, ok := entryOf(t, store, result.Tree, "src")
		require.True(t, ok)
		require.NotEqual(t, oldSrc.Hash, newSrc.Hash)

		oldOther, _ := entryOf(t, store, oldSrc.Hash, "other.rs")
		newOther, _ := entryOf(t, store, newSrc.Hash, "other.rs")
		require.Equal(t, oldOther.Hash, newOther.Hash)

		lib, ok := entryOf(t, store, newSrc.Hash, "lib.rs")
		require.True(t, ok)
		content, err := store.Blob(lib.Hash)
		require.NoError(t, err)
		require.Equal(t, "new\n", string(content))
	})

	t.Run("uses the given message and mode", func(t *testing.T) {
		eng, store := newTestEngine(t)
		seedCommit(t, eng, store, plumbing.NewBranchReferenceName("main"), plumbing.ZeroHash, map[string]string{"a": "a"})

		req := request("main", "bin/run.sh", "#!/bin/sh\n")
		req.Mode = filemode.Executable
		req.Message = "Add runner\n\n\n"
		result, err := eng.CommitFile(context.Background(), req)
		require.NoError(t, err)

		commit, err := store.Commit(result.Commit)
		require.NoError(t, err)
		require.Equal(t, "Add runner\n", commit.Message)

		entry, found, err := eng.FileAt(result.Tree, "bin/run.sh")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, filemode.Executable, entry.Mode)
	})

	t.Run("does not touch HEAD or other branches", func(t *testing.T) {
		eng, store := newTestEngine(t)
		main := plumbing.NewBranchReferenceName("main")
		docs := plumbing.NewBranchReferenceName("docs")
		mainTip := seedCommit(t, eng, store, main, plumbing.ZeroHash, map[string]string{"code.go": "package x\n"})
		docsTip := seedCommit(t, eng, store, docs, plumbing.ZeroHash, map[string]string{"index.md": "# docs\n"})
		require.NoError(t, store.Storer().SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, main)))

		result, err := eng.CommitFile(context.Background(), request("docs", "guide.md", "guide\n"))
		require.NoError(t, err)

		require.Equal(t, mainTip, refOf(t, store, main))
		require.Equal(t, mainTip, refOf(t, store, plumbing.HEAD))
		require.Equal(t, result.Commit, refOf(t, store, docs))
		require.Equal(t, docsTip, result.Parent)

		_, found, err := eng.FileAt(result.Tree, "code.go")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("re-running with identical content keeps the tree", func(t *testing.T) {
		eng, store := newTestEngine(t)
		seedCommit(t, eng, store, plumbing.NewBranchReferenceName("main"), plumbing.ZeroHash, map[string]string{"a.txt": "a"})

		first, err := eng.CommitFile(context.Background(), request("main", "notes/todo.md", "todo"))
		require.NoError(t, err)
		require.True(t, first.TreeChanged)

		second, err := eng.CommitFile(context.Background(), request("main", "notes/todo.md", "todo"))
		require.NoError(t, err)
		require.False(t, second.TreeChanged)
		require.Equal(t, first.Tree, second.Tree)
		require.Equal(t, first.Commit, second.Parent)
		require.NotEqual(t, first.Commit, second.Commit)
	})

	t.Run("skips unchanged trees when asked", func(t *testing.T) {
		eng, store := newTestEngine(t)
		main := plumbing.NewBranchReferenceName("main")
		tip := seedCommit(t, eng, store, main, plumbing.ZeroHash, map[string]string{"a.txt": "a"})

		req := request("main", "a.txt", "a")
		req.SkipUnchanged = true
		result, err := eng.CommitFile(context.Background(), req)
		require.NoError(t, err)
		require.True(t, result.Skipped)
		require.True(t, result.Commit.IsZero())
		require.Equal(t, tip, refOf(t, store, main))
	})

	t.Run("creates missing intermediate directories", func(t *testing.T) {
		eng, store := newTestEngine(t)
		tip := seedCommit(t, eng, store, plumbing.NewBranchReferenceName("main"), plumbing.ZeroHash, map[string]string{
			"Cargo.toml": "[package]\n",
			"src/lib.rs": "",
		})
		baseTree, err := store.Tree(treeOf(t, store, tip))
		require.NoError(t, err)

		result, err := eng.CommitFile(context.Background(), request("main", "new/feature.rs", "fn f() {}\n"))
		require.NoError(t, err)

		root, err := store.Tree(result.Tree)
		require.NoError(t, err)
		require.Len(t, root.Entries, len(baseTree.Entries)+1)
		for _, old := range baseTree.Entries {
			e, ok := entryOf(t, store, result.Tree, old.Name)
			require.True(t, ok)
			require.Equal(t, old.Hash, e.Hash)
		}

		newDir, ok := entryOf(t, store, result.Tree, "new")
		require.True(t, ok)
		require.Equal(t, filemode.Dir, newDir.Mode)
		sub, err := store.Tree(newDir.Hash)
		require.NoError(t, err)
		require.Len(t, sub.Entries, 1)
		require.Equal(t, "feature.rs", sub.Entries[0].Name)
	})

	t.Run("seeds a missing branch from its remote-tracking ref", func(t *testing.T) {
		eng, store := newTestEngine(t)
		remote := plumbing.NewRemoteReferenceName("origin", "feature/x")
		c := seedCommit(t, eng, store, remote, plumbing.ZeroHash, map[string]string{
			"a.txt":     "a",
			"dir/b.txt": "b",
		})

		req := request("feature/x", "dir/c.txt", "c")
		req.Resolve = engine.ResolveOptions{TrackRemote: true}
		result, err := eng.CommitFile(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, engine.BranchSeeding, result.Kind)
		require.Equal(t, c, result.Parent)

		local := plumbing.NewBranchReferenceName("feature/x")
		require.Equal(t, result.Commit, refOf(t, store, local))
		require.Equal(t, c, refOf(t, store, remote), "remote-tracking ref is read-only")

		commit, err := store.Commit(result.Commit)
		require.NoError(t, err)
		require.Equal(t, []plumbing.Hash{c}, commit.ParentHashes)

		base := treeOf(t, store, c)
		before, _ := entryOf(t, store, base, "a.txt")
		after, _ := entryOf(t, store, result.Tree, "a.txt")
		require.Equal(t, before.Hash, after.Hash)
		_, found, err := eng.FileAt(result.Tree, "dir/b.txt")
		require.NoError(t, err)
		require.True(t, found)
	})

	t.Run("creates a missing branch from HEAD", func(t *testing.T) {
		eng, store := newTestEngine(t)
		main := plumbing.NewBranchReferenceName("main")
		tip := seedCommit(t, eng, store, main, plumbing.ZeroHash, map[string]string{"a.txt": "a"})
		require.NoError(t, store.Storer().SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, main)))

		req := request("notes", "n.md", "n")
		req.Resolve = engine.ResolveOptions{CreateFromHead: true}
		result, err := eng.CommitFile(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, engine.BranchCreating, result.Kind)
		require.Equal(t, tip, result.Parent)
		require.Equal(t, result.Commit, refOf(t, store, plumbing.NewBranchReferenceName("notes")))
		require.Equal(t, tip, refOf(t, store, main))
	})

	t.Run("starts an orphan branch", func(t *testing.T) {
		eng, store := newTestEngine(t)
		seedCommit(t, eng, store, plumbing.NewBranchReferenceName("main"), plumbing.ZeroHash, map[string]string{"a.txt": "a"})

		req := request("gh-pages", "index.html", "<html></html>")
		req.Resolve = engine.ResolveOptions{Orphan: true}
		result, err := eng.CommitFile(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, engine.BranchOrphan, result.Kind)
		require.True(t, result.Parent.IsZero())

		commit, err := store.Commit(result.Commit)
		require.NoError(t, err)
		require.Empty(t, commit.ParentHashes)

		root, err := store.Tree(result.Tree)
		require.NoError(t, err)
		require.Len(t, root.Entries, 1)
		require.Equal(t, "index.html", root.Entries[0].Name)
	})

	t.Run("fails when the branch does not exist", func(t *testing.T) {
		eng, store := newTestEngine(t)
		seedCommit(t, eng, store, plumbing.NewBranchReferenceName("main"), plumbing.ZeroHash, map[string]string{"a.txt": "a"})

		req := request("missing", "a.txt", "b")
		req.Resolve = engine.ResolveOptions{TrackRemote: true}
		_, err := eng.CommitFile(context.Background(), req)
		require.ErrorIs(t, err, bgiterrors.ErrBranchNotFound)
		require.Contains(t, err.Error(), "missing")

		_, found, err := store.Ref(plumbing.NewBranchReferenceName("missing"))
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("rejects invalid paths", func(t *testing.T) {
		eng, store := newTestEngine(t)
		seedCommit(t, eng, store, plumbing.NewBranchReferenceName("main"), plumbing.ZeroHash, map[string]string{"a.txt": "a"})

		for _, path := range []string{"", "/abs", "a//b", "../x", "a/./b", ".git/config", "x/"} {
			_, err := eng.CommitFile(context.Background(), request("main", path, "x"))
			require.Error(t, err, path)
		}
	})
}

func TestPathConflict(t *testing.T) {
	t.Run("file where a directory is needed", func(t *testing.T) {
		eng, store := newTestEngine(t)
		main := plumbing.NewBranchReferenceName("main")
		tip := seedCommit(t, eng, store, main, plumbing.ZeroHash, map[string]string{"docs": "not a dir"})

		_, err := eng.CommitFile(context.Background(), request("main", "docs/guide.md", "x"))
		require.ErrorIs(t, err, bgiterrors.ErrPathConflict)
		require.Contains(t, err.Error(), "docs")
		require.Equal(t, tip, refOf(t, store, main))
	})

	t.Run("directory where the file goes", func(t *testing.T) {
		eng, store := newTestEngine(t)
		seedCommit(t, eng, store, plumbing.NewBranchReferenceName("main"), plumbing.ZeroHash, map[string]string{"src/lib.rs": "x"})

		_, err := eng.CommitFile(context.Background(), request("main", "src", "x"))
		require.ErrorIs(t, err, bgiterrors.ErrPathConflict)

		var conflict *bgiterrors.PathConflictError
		require.ErrorAs(t, err, &conflict)
		require.Equal(t, "src", conflict.Segment)
		require.Equal(t, "directory", conflict.Actual)
	})
}

// racingStore moves the branch behind the engine's back right after the
// commit object is written
type racingStore struct {
	*git.Store
	ref  plumbing.ReferenceName
	move plumbing.Hash
}

func (r *racingStore) WriteCommit(c *object.Commit) (plumbing.Hash, error) {
	hash, err := r.Store.WriteCommit(c)
	if err != nil {
		return hash, err
	}
	if err := r.Storer().SetReference(plumbing.NewHashReference(r.ref, r.move)); err != nil {
		return plumbing.ZeroHash, err
	}
	return hash, nil
}

func TestConcurrentBranchMove(t *testing.T) {
	t.Run("rejects a branch moved after resolution", func(t *testing.T) {
		base := git.NewStore(memory.NewStorage())
		seeder := engine.NewEngine(base)
		main := plumbing.NewBranchReferenceName("main")
		tip := seedCommit(t, seeder, base, main, plumbing.ZeroHash, map[string]string{"a.txt": "a"})
		other := seedCommit(t, seeder, base, plumbing.NewBranchReferenceName("other"), tip, map[string]string{"b.txt": "b"})

		eng := engine.NewEngine(&racingStore{Store: base, ref: main, move: other})
		_, err := eng.CommitFile(context.Background(), request("main", "a.txt", "changed"))
		require.ErrorIs(t, err, bgiterrors.ErrConcurrentBranchMove)

		var moved *bgiterrors.ConcurrentBranchMoveError
		require.ErrorAs(t, err, &moved)
		require.Equal(t, tip.String(), moved.Expected)
		require.Equal(t, other.String(), moved.Actual)

		require.Equal(t, other, refOf(t, base, main), "the other writer's update must survive")
	})

	t.Run("rejects a stale resolution", func(t *testing.T) {
		eng, store := newTestEngine(t)
		main := plumbing.NewBranchReferenceName("main")
		tip := seedCommit(t, eng, store, main, plumbing.ZeroHash, map[string]string{"a.txt": "a"})

		res, err := eng.Resolve("main", engine.ResolveOptions{})
		require.NoError(t, err)

		moved := seedCommit(t, eng, store, main, tip, map[string]string{"b.txt": "b"})

		_, err = eng.WriteCommit(context.Background(), res, engine.CommitSpec{
			Tree:      res.BaseTree,
			Message:   "stale",
			Author:    testSig,
			Committer: testSig,
		})
		require.ErrorIs(t, err, bgiterrors.ErrConcurrentBranchMove)
		require.Equal(t, moved, refOf(t, store, main))
	})

	t.Run("rejects an orphan branch created concurrently", func(t *testing.T) {
		eng, store := newTestEngine(t)

		res, err := eng.Resolve("pages", engine.ResolveOptions{Orphan: true})
		require.NoError(t, err)

		pages := plumbing.NewBranchReferenceName("pages")
		created := seedCommit(t, eng, store, pages, plumbing.ZeroHash, map[string]string{"x": "x"})

		blob, err := store.WriteBlob([]byte("y"))
		require.NoError(t, err)
		tree, err := eng.RebuildTree(plumbing.ZeroHash, "y", blob, filemode.Regular)
		require.NoError(t, err)

		_, err = eng.WriteCommit(context.Background(), res, engine.CommitSpec{Tree: tree, Message: "m", Author: testSig, Committer: testSig})
		require.ErrorIs(t, err, bgiterrors.ErrConcurrentBranchMove)
		require.Equal(t, created, refOf(t, store, pages))
	})
}

func TestRebuildTreeOrdering(t *testing.T) {
	eng, store := newTestEngine(t)

	tree := plumbing.ZeroHash
	for _, path := range []string{"a/inner.txt", "a.txt", "a-b", "Z"} {
		blob, err := store.WriteBlob([]byte(path))
		require.NoError(t, err)
		tree, err = eng.RebuildTree(tree, path, blob, filemode.Regular)
		require.NoError(t, err)
	}

	root, err := store.Tree(tree)
	require.NoError(t, err)
	names := make([]string, 0, len(root.Entries))
	for _, e := range root.Entries {
		names = append(names, e.Name)
	}
	// Directories sort as if they had a trailing slash
	require.Equal(t, []string{"Z", "a-b", "a.txt", "a"}, names)
}

func TestResolve(t *testing.T) {
	t.Run("local branch wins over remote", func(t *testing.T) {
		eng, store := newTestEngine(t)
		local := seedCommit(t, eng, store, plumbing.NewBranchReferenceName("dev"), plumbing.ZeroHash, map[string]string{"l": "l"})
		seedCommit(t, eng, store, plumbing.NewRemoteReferenceName("origin", "dev"), plumbing.ZeroHash, map[string]string{"r": "r"})

		res, err := eng.Resolve("dev", engine.ResolveOptions{TrackRemote: true})
		require.NoError(t, err)
		require.Equal(t, engine.BranchFound, res.Kind)
		require.Equal(t, local, res.Parent)
		require.Equal(t, local, res.Expected)
		require.False(t, res.NeedsCreate())
	})

	t.Run("uses the configured remote", func(t *testing.T) {
		eng, store := newTestEngine(t)
		tip := seedCommit(t, eng, store, plumbing.NewRemoteReferenceName("upstream", "dev"), plumbing.ZeroHash, map[string]string{"r": "r"})

		_, err := eng.Resolve("dev", engine.ResolveOptions{TrackRemote: true})
		require.ErrorIs(t, err, bgiterrors.ErrBranchNotFound)

		res, err := eng.Resolve("dev", engine.ResolveOptions{TrackRemote: true, Remote: "upstream"})
		require.NoError(t, err)
		require.Equal(t, engine.BranchSeeding, res.Kind)
		require.Equal(t, tip, res.Parent)
		require.True(t, res.Expected.IsZero())
		require.True(t, res.NeedsCreate())
	})

	t.Run("remote is ignored without track-remote", func(t *testing.T) {
		eng, store := newTestEngine(t)
		seedCommit(t, eng, store, plumbing.NewRemoteReferenceName("origin", "dev"), plumbing.ZeroHash, map[string]string{"r": "r"})

		_, err := eng.Resolve("dev", engine.ResolveOptions{})
		require.ErrorIs(t, err, bgiterrors.ErrBranchNotFound)
	})

	t.Run("create from HEAD needs a HEAD commit", func(t *testing.T) {
		eng, store := newTestEngine(t)
		require.NoError(t, store.Storer().SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))))

		_, err := eng.Resolve("dev", engine.ResolveOptions{CreateFromHead: true})
		require.ErrorIs(t, err, bgiterrors.ErrBranchNotFound)
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		eng, _ := newTestEngine(t)
		for _, name := range []string{"", "  ", "refs/heads/main", "a..b", "x.lock", "-dash"} {
			_, err := eng.Resolve(name, engine.ResolveOptions{Orphan: true})
			require.Error(t, err, name)
		}
	})

	t.Run("kind names", func(t *testing.T) {
		require.Equal(t, "BranchSeeding", engine.BranchSeeding.String())
		require.Equal(t, "ResolutionKind(9)", engine.ResolutionKind(9).String())
	})
}

func TestDryRunStore(t *testing.T) {
	base := git.NewStore(memory.NewStorage())
	seeder := engine.NewEngine(base)
	main := plumbing.NewBranchReferenceName("main")
	tip := seedCommit(t, seeder, base, main, plumbing.ZeroHash, map[string]string{"a.txt": "a"})

	eng := engine.NewEngine(git.NewDryRunStore(base))
	plan, err := eng.Plan(request("main", "docs/new.md", "new"))
	require.NoError(t, err)
	require.True(t, plan.TreeChanged)

	// Objects only exist in the overlay
	_, err = base.Tree(plan.Tree)
	require.ErrorIs(t, err, bgiterrors.ErrObjectStore)
	_, found, err := eng.FileAt(plan.Tree, "docs/new.md")
	require.NoError(t, err)
	require.True(t, found)

	_, err = eng.CommitFile(context.Background(), request("main", "docs/new.md", "new"))
	require.ErrorIs(t, err, git.ErrReadOnlyRefs)
	require.Equal(t, tip, refOf(t, base, main))
}
