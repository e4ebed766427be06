package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// ErrReadOnlyRefs is returned when a reference update is attempted on a DryRunStore
var ErrReadOnlyRefs = errors.New("dry run: references are read-only")

// DryRunStore layers in-memory scratch storage over a base store.
// Reads fall through to the base, writes only reach the scratch storage,
// and references cannot be changed.
type DryRunStore struct {
	base    *Store
	scratch *Store
}

// NewDryRunStore wraps base so that nothing is persisted
func NewDryRunStore(base *Store) *DryRunStore {
	return &DryRunStore{
		base:    base,
		scratch: NewStore(memory.NewStorage()),
	}
}

func (d *DryRunStore) Commit(hash plumbing.Hash) (*object.Commit, error) {
	if commit, err := d.scratch.Commit(hash); err == nil {
		return commit, nil
	}
	return d.base.Commit(hash)
}

func (d *DryRunStore) Tree(hash plumbing.Hash) (*object.Tree, error) {
	if tree, err := d.scratch.Tree(hash); err == nil {
		return tree, nil
	}
	return d.base.Tree(hash)
}

func (d *DryRunStore) Blob(hash plumbing.Hash) ([]byte, error) {
	if content, err := d.scratch.Blob(hash); err == nil {
		return content, nil
	}
	return d.base.Blob(hash)
}

func (d *DryRunStore) WriteBlob(content []byte) (plumbing.Hash, error) {
	return d.scratch.WriteBlob(content)
}

func (d *DryRunStore) WriteTree(entries []object.TreeEntry) (plumbing.Hash, error) {
	return d.scratch.WriteTree(entries)
}

func (d *DryRunStore) WriteCommit(commit *object.Commit) (plumbing.Hash, error) {
	return d.scratch.WriteCommit(commit)
}

func (d *DryRunStore) Ref(name plumbing.ReferenceName) (plumbing.Hash, bool, error) {
	return d.base.Ref(name)
}

func (d *DryRunStore) UpdateRef(_ context.Context, name plumbing.ReferenceName, _, _ plumbing.Hash) error {
	return fmt.Errorf("%w: %s", ErrReadOnlyRefs, name)
}
