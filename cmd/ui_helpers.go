package cmd

import (
	"os"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"sqlapi/cli/internal/terminal"
)

// startSpinner shows a transient spinner on stderr while a statement runs.
// The spinner is skipped when stderr is not a terminal or output is JSON, so piped
// output stays clean. The returned function stops it and restores the cursor.
func startSpinner(text string, quiet bool) func() {
	if quiet || !terminal.IsTerminal(os.Stderr) {
		return func() {}
	}

	cursor.Hide()
	sp, err := pterm.DefaultSpinner.
		WithWriter(os.Stderr).
		WithRemoveWhenDone(true).
		Start(text)
	if err != nil {
		cursor.Show()
		return func() {}
	}
	return func() {
		_ = sp.Stop()
		cursor.Show()
	}
}
