package cli

import (
	"os"

	"golang.org/x/term"
)

// IsNonInteractive reports whether the session must not prompt or take over the terminal.
func IsNonInteractive() bool {
	if nonInteractive {
		return true
	}
	if _, ok := os.LookupEnv("IDENTIQ_NON_INTERACTIVE"); ok {
		return true
	}
	return !hasTTY()
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
