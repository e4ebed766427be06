// Package tui provides the terminal side of bgit.
//
// It handles:
//   - Structured logging and status reporting (Splog), with optional rotating log files
//   - Yes/no prompts (bubbletea) and commit message editing (survey)
//   - Terminal styling and colors (using lipgloss)
package tui
