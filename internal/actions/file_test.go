package actions_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/stretchr/testify/require"

	"bgit.dev/bgit/internal/actions"
	"bgit.dev/bgit/testhelpers"
)

func TestResolvePath(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

	t.Run("relative to the working directory", func(t *testing.T) {
		abs, rel, err := actions.ResolvePath(scene.Dir, scene.Path("src"), "lib.rs")
		require.NoError(t, err)
		require.Equal(t, scene.Path("src/lib.rs"), abs)
		require.Equal(t, "src/lib.rs", rel)
	})

	t.Run("absolute path", func(t *testing.T) {
		_, rel, err := actions.ResolvePath(scene.Dir, scene.Dir, scene.Path("README.md"))
		require.NoError(t, err)
		require.Equal(t, "README.md", rel)
	})

	t.Run("dot segments are cleaned", func(t *testing.T) {
		_, rel, err := actions.ResolvePath(scene.Dir, scene.Path("src"), "../README.md")
		require.NoError(t, err)
		require.Equal(t, "README.md", rel)
	})

	t.Run("outside the repository", func(t *testing.T) {
		outside := filepath.Join(filepath.Dir(scene.Dir), "elsewhere.txt")
		require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

		_, _, err := actions.ResolvePath(scene.Dir, scene.Dir, outside)
		require.Error(t, err)
		require.Contains(t, err.Error(), "outside the repository")
	})

	t.Run("the repository root itself", func(t *testing.T) {
		_, _, err := actions.ResolvePath(scene.Dir, scene.Path("src"), "..")
		require.Error(t, err)
	})

	t.Run("inside .git", func(t *testing.T) {
		_, _, err := actions.ResolvePath(scene.Dir, scene.Dir, ".git/config")
		require.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := actions.ResolvePath(scene.Dir, scene.Dir, "")
		require.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

	t.Run("regular file", func(t *testing.T) {
		file, err := actions.LoadFile(scene.Dir, scene.Dir, "src/lib.rs")
		require.NoError(t, err)
		require.Equal(t, "src/lib.rs", file.RelPath)
		require.Equal(t, "pub fn lib() {}\n", string(file.Content))
		require.Equal(t, filemode.Regular, file.Mode)
	})

	t.Run("executable file", func(t *testing.T) {
		require.NoError(t, scene.Repo.WriteFileMode("bin/run.sh", "#!/bin/sh\n", 0o755))

		file, err := actions.LoadFile(scene.Dir, scene.Dir, "bin/run.sh")
		require.NoError(t, err)
		require.Equal(t, filemode.Executable, file.Mode)
	})

	t.Run("symlink is committed as its target", func(t *testing.T) {
		require.NoError(t, os.Symlink("README.md", scene.Path("link.md")))

		file, err := actions.LoadFile(scene.Dir, scene.Dir, "link.md")
		require.NoError(t, err)
		require.Equal(t, filemode.Symlink, file.Mode)
		require.Equal(t, "README.md", string(file.Content))
	})

	t.Run("empty file", func(t *testing.T) {
		require.NoError(t, scene.Repo.WriteFile("empty.txt", ""))

		file, err := actions.LoadFile(scene.Dir, scene.Dir, "empty.txt")
		require.NoError(t, err)
		require.Empty(t, file.Content)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := actions.LoadFile(scene.Dir, scene.Dir, "nope.txt")
		require.Error(t, err)
		require.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := actions.LoadFile(scene.Dir, scene.Dir, "src")
		require.Error(t, err)
		require.Contains(t, err.Error(), "is a directory")
	})
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		message string
		title   string
		body    string
	}{
		{"Update docs/index.md\n", "Update docs/index.md", ""},
		{"Fix typo\n\nThe intro said teh.\n", "Fix typo", "The intro said teh."},
		{"  padded  \n", "padded", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		title, body := actions.SplitMessage(tt.message)
		require.Equal(t, tt.title, title, "title of %q", tt.message)
		require.Equal(t, tt.body, body, "body of %q", tt.message)
	}
}

func TestReadMessageFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "msg.txt")
	require.NoError(t, os.WriteFile(path, []byte("Subject\n# a comment\n\nBody\n"), 0o644))
	msg, err := actions.ReadMessageFile(path)
	require.NoError(t, err)
	require.Equal(t, "Subject\n\nBody", msg)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("# only comments\n"), 0o644))
	_, err = actions.ReadMessageFile(empty)
	require.Error(t, err)

	_, err = actions.ReadMessageFile(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
}
