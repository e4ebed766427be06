package engine

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ObjectStore is the object database and reference storage the engine works against
type ObjectStore interface {
	// Object reads
	Commit(hash plumbing.Hash) (*object.Commit, error)
	Tree(hash plumbing.Hash) (*object.Tree, error)
	Blob(hash plumbing.Hash) ([]byte, error)

	// Object writes return the content id; writing an existing object is a no-op
	WriteBlob(content []byte) (plumbing.Hash, error)
	WriteTree(entries []object.TreeEntry) (plumbing.Hash, error)
	WriteCommit(commit *object.Commit) (plumbing.Hash, error)

	// Ref resolves name to a commit id; found is false when it does not exist
	Ref(name plumbing.ReferenceName) (hash plumbing.Hash, found bool, err error)
	// UpdateRef moves name from old to next atomically; a zero old means "must not exist"
	UpdateRef(ctx context.Context, name plumbing.ReferenceName, old, next plumbing.Hash) error
}

// Logger receives debug traces of the pipeline phases
type Logger interface {
	Debug(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
