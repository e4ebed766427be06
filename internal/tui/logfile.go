package tui

import (
	"os"
	"path/filepath"
)

// LogFilePath returns the log file named by BGIT_LOG_FILE, or "" when file
// logging is off. A leading "~/" expands to the home directory.
func LogFilePath() string {
	path := os.Getenv("BGIT_LOG_FILE")
	if len(path) > 1 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return path
}
