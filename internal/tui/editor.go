package tui

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// PromptCommitMessage opens $VISUAL / $EDITOR on initial and returns the
// edited message with comment lines removed. An empty result is an error.
func PromptCommitMessage(initial string) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}

	var edited string
	prompt := &survey.Editor{
		Message:       "Commit message",
		Default:       initial + "\n\n# Lines starting with '#' are ignored. An empty message aborts the commit.\n",
		HideDefault:   true,
		AppendDefault: true,
		FileName:      "BGIT_COMMIT_MSG*.txt",
	}
	if err := survey.AskOne(prompt, &edited); err != nil {
		return "", err
	}

	msg := StripComments(edited)
	if msg == "" {
		return "", fmt.Errorf("aborting commit due to empty commit message")
	}
	return msg, nil
}

// StripComments drops '#' lines and surrounding blank lines from an edited message
func StripComments(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t\r"))
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
