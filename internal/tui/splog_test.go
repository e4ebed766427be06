package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestSplog(t *testing.T) {
	t.Run("routes warnings and errors to the error writer", func(t *testing.T) {
		var out, errOut bytes.Buffer
		splog, err := NewSplogWithOptions(SplogOptions{Out: &out, Err: &errOut})
		require.NoError(t, err)

		splog.Info("committed %s", "a.txt")
		splog.Tip("plain tip")
		splog.Warn("fetch failed: %s", "offline")
		splog.Error("boom")

		require.Equal(t, "committed a.txt\n💡 plain tip\n", out.String())
		require.Equal(t, "⚠️  fetch failed: offline\n❌ boom\n", errOut.String())
	})

	t.Run("debug only prints in debug mode", func(t *testing.T) {
		var out bytes.Buffer
		quiet, err := NewSplogWithOptions(SplogOptions{Out: &out, Err: &out})
		require.NoError(t, err)
		quiet.Debug("hidden %d", 1)
		require.Empty(t, out.String())

		loud, err := NewSplogWithOptions(SplogOptions{Out: &out, Err: &out, Debug: true})
		require.NoError(t, err)
		loud.Debug("shown %d", 2)
		require.Equal(t, "shown 2\n", out.String())
	})

	t.Run("quiet suppresses console output", func(t *testing.T) {
		var out bytes.Buffer
		splog, err := NewSplogWithOptions(SplogOptions{Out: &out, Err: &out})
		require.NoError(t, err)

		splog.SetQuiet(true)
		require.True(t, splog.IsQuiet())
		splog.Info("nothing")
		splog.Newline()
		require.Empty(t, out.String())

		splog.Warn("still shown")
		require.Equal(t, "⚠️  still shown\n", out.String())
	})

	t.Run("file logging records debug messages", func(t *testing.T) {
		var out bytes.Buffer
		logFile := filepath.Join(t.TempDir(), "logs", "bgit.log")
		splog, err := NewSplogWithOptions(SplogOptions{Out: &out, Err: &out, LogFile: logFile})
		require.NoError(t, err)

		splog.Debug("Resolving branch %s", "docs")
		splog.Info("done")
		require.NoError(t, splog.Close())

		require.Equal(t, "done\n", out.String())
		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		require.Contains(t, string(content), "Resolving branch docs")
		require.Contains(t, string(content), "level=DEBUG")
		require.Contains(t, string(content), "done")
	})
}

func TestRotatingWriterFromEnv(t *testing.T) {
	t.Setenv("BGIT_LOG_MAX_SIZE", "5")
	t.Setenv("BGIT_LOG_MAX_BACKUPS", "0")
	t.Setenv("BGIT_LOG_MAX_AGE", "not-a-number")

	w := newRotatingWriter("/tmp/bgit.log")
	require.Equal(t, 5, w.MaxSize)
	require.Equal(t, 0, w.MaxBackups)
	require.Equal(t, 30, w.MaxAge)
}

func TestLogFilePath(t *testing.T) {
	t.Setenv("BGIT_LOG_FILE", "")
	require.Empty(t, LogFilePath())

	t.Setenv("BGIT_LOG_FILE", "/var/log/bgit.log")
	require.Equal(t, "/var/log/bgit.log", LogFilePath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("BGIT_LOG_FILE", "~/bgit.log")
	require.Equal(t, filepath.Join(home, "bgit.log"), LogFilePath())
}

func TestConfirmModel(t *testing.T) {
	press := func(m tea.Model, msg tea.KeyMsg) confirmModel {
		next, _ := m.Update(msg)
		return next.(confirmModel)
	}

	t.Run("y accepts", func(t *testing.T) {
		m := press(confirmModel{prompt: "Create?"}, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
		require.True(t, m.done)
		require.True(t, m.choice)
		require.Empty(t, m.View())
	})

	t.Run("enter keeps the default", func(t *testing.T) {
		m := press(confirmModel{prompt: "Create?", choice: true}, tea.KeyMsg{Type: tea.KeyEnter})
		require.True(t, m.done)
		require.True(t, m.choice)
	})

	t.Run("ctrl+c cancels", func(t *testing.T) {
		m := press(confirmModel{prompt: "Create?"}, tea.KeyMsg{Type: tea.KeyCtrlC})
		require.Error(t, m.err)
	})

	t.Run("view shows the default", func(t *testing.T) {
		require.Contains(t, confirmModel{prompt: "Create?"}.View(), "[y/N]")
		require.Contains(t, confirmModel{prompt: "Create?", choice: true}.View(), "[Y/n]")
	})
}

func TestPromptsDisabled(t *testing.T) {
	t.Setenv("BGIT_TEST_NO_INTERACTIVE", "1")

	_, err := PromptConfirm("Create?", false)
	require.ErrorIs(t, err, ErrInteractiveDisabled)

	_, err = PromptCommitMessage("Update a.txt")
	require.ErrorIs(t, err, ErrInteractiveDisabled)
	require.False(t, Interactive())
}

func TestStripComments(t *testing.T) {
	text := "Fix typo   \n\nLonger body\n# comment line\n\n# another\n"
	require.Equal(t, "Fix typo\n\nLonger body", StripComments(text))
	require.Empty(t, StripComments("# only comments\n\n"))
}
