package components

import (
	"strings"

	"github.com/identiq/identiq/internal/tui/styles"
)

// EmptyState is shown in place of a list or chart that has nothing to display.
type EmptyState struct {
	Icon  string
	Title string
	Hint  string

	// Command is an optional CLI command that helps fill the view.
	Command string
}

// Render draws the empty state, one element per line.
func (e EmptyState) Render(styleSet styles.Styles) string {
	title := e.Title
	if e.Icon != "" {
		title = e.Icon + "  " + title
	}

	lines := []string{styleSet.Muted.Render(title)}
	if e.Hint != "" {
		lines = append(lines, styleSet.Muted.Render(e.Hint))
	}
	if e.Command != "" {
		lines = append(lines, "", styleSet.Text.Render("Try: ")+styleSet.Accent.Render(e.Command))
	}
	return strings.Join(lines, "\n")
}

// EmptyUsers is shown when the user list is empty, e.g. after deleting every demo user.
func EmptyUsers() EmptyState {
	return EmptyState{
		Icon:    "👤",
		Title:   "No users yet",
		Hint:    "Demo users are seeded when the database is created.",
		Command: "identiq init",
	}
}

func EmptyDistribution() EmptyState {
	return EmptyState{
		Icon:  "📊",
		Title: "No theme data",
		Hint:  "The chart fills in as users pick themes.",
	}
}
