package actions

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/filemode"

	"bgit.dev/bgit/internal/engine"
)

// WorkingFile is a file read from the working tree, ready to be committed
type WorkingFile struct {
	// AbsPath is the file's location on disk
	AbsPath string
	// RelPath is slash-separated and relative to the repository root
	RelPath string
	Content []byte
	Mode    filemode.FileMode
}

// ResolvePath turns a command-line path into an absolute path and a
// repository-relative path. Relative paths are taken from workDir. Symlinked
// directories are resolved; a symlink in the final position is kept as is.
func ResolvePath(repoRoot, workDir, path string) (absPath, relPath string, err error) {
	if path == "" {
		return "", "", fmt.Errorf("no file given")
	}
	absPath = path
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(workDir, absPath)
	}
	absPath = filepath.Clean(absPath)

	dir, err := filepath.EvalSymlinks(filepath.Dir(absPath))
	if err != nil {
		return "", "", fmt.Errorf("cannot resolve %s: %w", path, err)
	}
	root, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		return "", "", fmt.Errorf("cannot resolve repository root: %w", err)
	}

	rel, err := filepath.Rel(root, filepath.Join(dir, filepath.Base(absPath)))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%s is outside the repository at %s", path, repoRoot)
	}

	relPath = filepath.ToSlash(rel)
	if _, err := engine.SplitPath(relPath); err != nil {
		return "", "", err
	}
	return absPath, relPath, nil
}

// LoadFile reads path from the working tree. The executable bit selects mode
// 100755, a symlink is committed as its target with mode 120000, and
// directories are rejected.
func LoadFile(repoRoot, workDir, path string) (*WorkingFile, error) {
	absPath, relPath, err := ResolvePath(repoRoot, workDir, path)
	if err != nil {
		return nil, err
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w in the working tree", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	file := &WorkingFile{AbsPath: absPath, RelPath: relPath}
	switch {
	case info.IsDir():
		return nil, fmt.Errorf("%s is a directory; bgit commits a single file", path)
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(absPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read link %s: %w", path, err)
		}
		file.Content = []byte(filepath.ToSlash(target))
		file.Mode = filemode.Symlink
	case !info.Mode().IsRegular():
		return nil, fmt.Errorf("%s is not a regular file", path)
	default:
		content, err := os.ReadFile(absPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
		file.Content = content
		file.Mode = filemode.Regular
		if info.Mode()&0o111 != 0 {
			file.Mode = filemode.Executable
		}
	}
	return file, nil
}
