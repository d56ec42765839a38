package cli

import (
	"fmt"
	"strings"
)

// PreflightError is a user-facing failure with a hint and a suggested next command.
type PreflightError struct {
	Message  string
	Hint     string
	NextStep string
}

func (e *PreflightError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Hint != "" {
		fmt.Fprintf(&b, "\n  hint: %s", e.Hint)
	}
	if e.NextStep != "" {
		fmt.Fprintf(&b, "\n  next: %s", e.NextStep)
	}
	return b.String()
}
