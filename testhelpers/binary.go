package testhelpers

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var (
	sharedBinaryPath string
	binaryOnce       sync.Once
	binaryErr        error
)

// SetSharedBinaryPath sets the shared binary path for tests.
func SetSharedBinaryPath(path string) {
	sharedBinaryPath = path
}

// GetSharedBinaryPath returns the shared binary path, building it lazily on
// first access if TestMain has not set it.
func GetSharedBinaryPath() string {
	binaryOnce.Do(func() {
		if sharedBinaryPath == "" {
			path, _, err := buildBinary()
			if err != nil {
				binaryErr = err
				return
			}
			sharedBinaryPath = path
		}
	})
	return sharedBinaryPath
}

// GetBinaryError returns any error that occurred during binary building.
func GetBinaryError() error {
	return binaryErr
}

// buildBinary builds the bgit binary into a temp directory and returns its
// path and a cleanup function.
func buildBinary() (string, func(), error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	moduleRoot := findModuleRoot(wd)
	if moduleRoot == "" {
		return "", nil, fmt.Errorf("could not find module root (go.mod) starting from %s", wd)
	}

	tmpDir, err := os.MkdirTemp("", "bgit-test-binary-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	binaryPath := filepath.Join(tmpDir, "bgit")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/bgit")
	cmd.Dir = moduleRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", nil, fmt.Errorf("failed to build: %s: %w", string(output), err)
	}

	cleanup := func() {
		_ = os.RemoveAll(tmpDir)
	}
	return binaryPath, cleanup, nil
}

// findModuleRoot walks up the directory tree from startDir to find the module root
// (directory containing go.mod file).
func findModuleRoot(startDir string) string {
	dir := startDir
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// TestMain builds the bgit binary once before running a package's tests.
func TestMain(m *testing.M, cleanup func()) {
	binaryPath, binaryCleanup, err := buildBinary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build bgit binary: %v\n", err)
		os.Exit(1)
	}

	SetSharedBinaryPath(binaryPath)

	code := m.Run()

	binaryCleanup()
	if cleanup != nil {
		cleanup()
	}
	os.Exit(code)
}

// CliResult is the captured outcome of one binary invocation
type CliResult struct {
	Stdout string
	Stderr string
	Err    error
}

// RunBgit runs the bgit binary in dir with prompts disabled and global git
// config isolated. extraEnv entries are appended to the environment.
func RunBgit(t *testing.T, dir string, extraEnv []string, args ...string) CliResult {
	t.Helper()

	binary := GetSharedBinaryPath()
	if binary == "" {
		t.Fatalf("bgit binary unavailable: %v", GetBinaryError())
	}

	cmd := bgitCommand(binary, dir, extraEnv, args)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	return CliResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

func bgitCommand(binary, dir string, extraEnv, args []string) *exec.Cmd {
	cmd := exec.Command(binary, args...)
	cmd.Dir = dir
	cmd.Env = append(gitEnv(), "BGIT_TEST_NO_INTERACTIVE=1")
	cmd.Env = append(cmd.Env, extraEnv...)
	return cmd
}

// BgitProcess is a bgit invocation running in the background
type BgitProcess struct {
	cmd    *exec.Cmd
	output *lockedBuffer
	done   chan error
}

// StartBgit starts the bgit binary without waiting for it. The process is
// killed by t.Cleanup if it is still running.
func StartBgit(t *testing.T, dir string, extraEnv []string, args ...string) *BgitProcess {
	t.Helper()

	binary := GetSharedBinaryPath()
	if binary == "" {
		t.Fatalf("bgit binary unavailable: %v", GetBinaryError())
	}

	p := &BgitProcess{
		cmd:    bgitCommand(binary, dir, extraEnv, args),
		output: &lockedBuffer{},
		done:   make(chan error, 1),
	}
	p.cmd.Stdout = p.output
	p.cmd.Stderr = p.output
	if err := p.cmd.Start(); err != nil {
		t.Fatalf("failed to start bgit: %v", err)
	}
	go func() { p.done <- p.cmd.Wait() }()

	t.Cleanup(func() {
		_ = p.cmd.Process.Kill()
	})
	return p
}

// Output returns the combined stdout and stderr written so far
func (p *BgitProcess) Output() string {
	return p.output.String()
}

// Stop sends SIGINT and waits up to timeout for the process to exit
func (p *BgitProcess) Stop(timeout time.Duration) error {
	if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
		return err
	}
	select {
	case err := <-p.done:
		return err
	case <-time.After(timeout):
		_ = p.cmd.Process.Kill()
		return fmt.Errorf("bgit did not exit within %s", timeout)
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
