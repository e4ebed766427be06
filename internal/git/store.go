package git

import (
	"context"
	"errors"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	gitstorer "github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/storage"

	bgiterrors "bgit.dev/bgit/internal/errors"
)

// Store reads and writes git objects and branch references.
//
// Objects are content addressed, so writes are append-only and idempotent.
// References are only ever changed with a compare-and-swap on their previous value.
type Store struct {
	storer storage.Storer
	refs   refUpdater
}

// refUpdater performs the compare-and-swap on a reference. A zero old hash
// means the reference must not exist yet.
type refUpdater interface {
	updateRef(ctx context.Context, name plumbing.ReferenceName, old, next plumbing.Hash) error
}

// NewStore creates a Store over any go-git storer (filesystem or memory).
// References are swapped with the storer's CheckAndSetReference.
func NewStore(s storage.Storer) *Store {
	return &Store{
		storer: s,
		refs:   &storerRefs{storer: s},
	}
}

// Storer exposes the underlying go-git storer
func (s *Store) Storer() storage.Storer {
	return s.storer
}

// Commit reads a commit object
func (s *Store) Commit(hash plumbing.Hash) (*object.Commit, error) {
	commit, err := object.GetCommit(s.storer, hash)
	if err != nil {
		return nil, bgiterrors.NewObjectStoreError("read commit", hash.String(), err)
	}
	return commit, nil
}

// Tree reads a tree object
func (s *Store) Tree(hash plumbing.Hash) (*object.Tree, error) {
	tree, err := object.GetTree(s.storer, hash)
	if err != nil {
		return nil, bgiterrors.NewObjectStoreError("read tree", hash.String(), err)
	}
	return tree, nil
}

// Blob reads the full content of a blob object
func (s *Store) Blob(hash plumbing.Hash) ([]byte, error) {
	blob, err := object.GetBlob(s.storer, hash)
	if err != nil {
		return nil, bgiterrors.NewObjectStoreError("read blob", hash.String(), err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return nil, bgiterrors.NewObjectStoreError("read blob", hash.String(), err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, bgiterrors.NewObjectStoreError("read blob", hash.String(), err)
	}
	return content, nil
}

// WriteBlob stores content as a blob and returns its id
func (s *Store) WriteBlob(content []byte) (plumbing.Hash, error) {
	obj := s.storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, bgiterrors.NewObjectStoreError("write blob", "", err)
	}
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return plumbing.ZeroHash, bgiterrors.NewObjectStoreError("write blob", "", err)
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, bgiterrors.NewObjectStoreError("write blob", "", err)
	}
	return s.store(obj, "write blob")
}

// WriteTree stores a tree with entries in the given order and returns its id.
// Callers are responsible for canonical ordering.
func (s *Store) WriteTree(entries []object.TreeEntry) (plumbing.Hash, error) {
	tree := &object.Tree{Entries: entries}
	obj := s.storer.NewEncodedObject()
	obj.SetType(plumbing.TreeObject)
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, bgiterrors.NewObjectStoreError("encode tree", "", err)
	}
	return s.store(obj, "write tree")
}

// WriteCommit stores a commit object and returns its id
func (s *Store) WriteCommit(commit *object.Commit) (plumbing.Hash, error) {
	obj := s.storer.NewEncodedObject()
	obj.SetType(plumbing.CommitObject)
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, bgiterrors.NewObjectStoreError("encode commit", "", err)
	}
	return s.store(obj, "write commit")
}

func (s *Store) store(obj plumbing.EncodedObject, op string) (plumbing.Hash, error) {
	hash, err := s.storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, bgiterrors.NewObjectStoreError(op, obj.Hash().String(), err)
	}
	return hash, nil
}

// Ref resolves a reference (following symbolic refs such as HEAD) to a commit id.
// found is false when the reference does not exist or HEAD is unborn.
func (s *Store) Ref(name plumbing.ReferenceName) (hash plumbing.Hash, found bool, err error) {
	return resolveRef(s.storer, name)
}

// UpdateRef atomically moves name from old to next. A zero old hash creates the
// reference and fails if it already exists. A mismatch is reported as a
// ConcurrentBranchMoveError and leaves the reference untouched.
func (s *Store) UpdateRef(ctx context.Context, name plumbing.ReferenceName, old, next plumbing.Hash) error {
	return s.refs.updateRef(ctx, name, old, next)
}

func resolveRef(s storage.Storer, name plumbing.ReferenceName) (plumbing.Hash, bool, error) {
	ref, err := gitstorer.ResolveReference(s, name)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, false, nil
		}
		return plumbing.ZeroHash, false, bgiterrors.NewObjectStoreError("read ref", name.String(), err)
	}
	return ref.Hash(), true, nil
}

// refMatches reports whether a reference holds expected, or is absent when expected is zero
func refMatches(expected, actual plumbing.Hash, found bool) bool {
	if expected.IsZero() {
		return !found
	}
	return found && actual == expected
}

// conflictError builds the race error from a fresh read of the reference
func conflictError(s storage.Storer, name plumbing.ReferenceName, expected plumbing.Hash) error {
	actual, found, err := resolveRef(s, name)
	if err != nil {
		return err
	}
	return newMoveError(name, expected, actual, found)
}

func newMoveError(name plumbing.ReferenceName, expected, actual plumbing.Hash, found bool) error {
	exp, act := "", ""
	if !expected.IsZero() {
		exp = expected.String()
	}
	if found {
		act = actual.String()
	}
	return bgiterrors.NewConcurrentBranchMoveError(name.Short(), exp, act)
}

// storerRefs swaps references through go-git's CheckAndSetReference
type storerRefs struct {
	storer storage.Storer
}

func (r *storerRefs) updateRef(_ context.Context, name plumbing.ReferenceName, old, next plumbing.Hash) error {
	actual, found, err := resolveRef(r.storer, name)
	if err != nil {
		return err
	}
	if !refMatches(old, actual, found) {
		return newMoveError(name, old, actual, found)
	}

	var oldRef *plumbing.Reference
	if !old.IsZero() {
		oldRef = plumbing.NewHashReference(name, old)
	}
	if err := r.storer.CheckAndSetReference(plumbing.NewHashReference(name, next), oldRef); err != nil {
		if errors.Is(err, storage.ErrReferenceHasChanged) {
			return conflictError(r.storer, name, old)
		}
		return bgiterrors.NewObjectStoreError("update ref", name.String(), err)
	}
	return nil
}

// commandRefs swaps references with `git update-ref <ref> <new> <old>`, which
// git performs under the ref lock, packed refs included.
type commandRefs struct {
	runner *CommandRunner
	storer storage.Storer
}

func (r *commandRefs) updateRef(ctx context.Context, name plumbing.ReferenceName, old, next plumbing.Hash) error {
	// An empty old value tells git the ref must not exist yet.
	oldArg := ""
	if !old.IsZero() {
		oldArg = old.String()
	}

	_, err := r.runner.Run(ctx, "update-ref", "-m", "bgit: update "+name.Short(), name.String(), next.String(), oldArg)
	if err == nil {
		return nil
	}

	actual, found, readErr := resolveRef(r.storer, name)
	if readErr != nil {
		return readErr
	}
	if !refMatches(old, actual, found) {
		return newMoveError(name, old, actual, found)
	}
	return bgiterrors.NewObjectStoreError("update ref", name.String(), err)
}
