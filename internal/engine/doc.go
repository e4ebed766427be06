// Package engine writes a single file to a branch without checking it out.
//
// It is the core of bgit, responsible for:
//   - Resolving the target branch to a parent commit and base tree
//   - Rebuilding the tree along the file's path, reusing untouched subtrees by id
//   - Writing the commit and advancing the branch with a compare-and-swap
//
// The engine never touches the working tree, the index or HEAD. It only talks
// to an ObjectStore, so it runs the same against an on-disk repository and
// go-git's in-memory storage.
package engine
