package activity

import (
	"fmt"
	"strings"
)

// Record statuses. A record moves forward only:
//
//	Starting... → Processing open prompt... | Processing... → Streaming...* → terminal
const (
	StatusStarting       = "Starting..."
	StatusOpenPrompt     = "Processing open prompt..."
	StatusProcessing     = "Processing..."
	StatusStreaming      = "Streaming..."
	StatusDone           = "Done."
	StatusError          = "Error"
	StatusOpenPromptFail = "Open prompt failed."
	StatusNoToolsRun     = "No tools run."
)

const (
	completedPrefix = "All "
	completedSuffix = " function calls completed."
)

// StatusExecuting is the turn status while a batch of n invocations runs.
func StatusExecuting(n int) string {
	return fmt.Sprintf("Executing %d function call(s)...", n)
}

// StatusCompleted is the terminal turn status after a batch of n invocations.
func StatusCompleted(n int) string {
	return fmt.Sprintf("All %d function calls completed.", n)
}

// IsTerminal reports whether status ends a record's lifecycle.
func IsTerminal(status string) bool {
	switch status {
	case StatusDone, StatusError, StatusOpenPromptFail, StatusNoToolsRun:
		return true
	}
	return strings.HasPrefix(status, completedPrefix) && strings.HasSuffix(status, completedSuffix)
}
