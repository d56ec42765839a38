package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/identiq/identiq/internal/tui/styles"
)

const maxNameLength = 24

// UserRow contains data needed to render a user in the list.
type UserRow struct {
	ID         string
	Name       string
	ThemeName  string
	ThemeColor string
	CreatedAt  time.Time
}

// RenderUserRow renders one line: name, theme swatch and join date.
func RenderUserRow(styleSet styles.Styles, row UserRow, focused bool) string {
	name := fmt.Sprintf("%-*s", maxNameLength, truncate(defaultIfEmpty(row.Name, row.ID), maxNameLength))
	nameStyle := styleSet.Text
	cursor := "  "
	if focused {
		nameStyle = styleSet.Selected
		cursor = styleSet.Selected.Render("› ")
	}

	swatch := "  "
	if row.ThemeColor != "" {
		swatch = lipgloss.NewStyle().Background(lipgloss.Color(row.ThemeColor)).Render("  ")
	}

	return fmt.Sprintf("%s%s %s %s  %s",
		cursor,
		nameStyle.Render(name),
		swatch,
		styleSet.Text.Render(fmt.Sprintf("%-10s", defaultIfEmpty(row.ThemeName, "--"))),
		styleSet.Muted.Render(formatJoined(row.CreatedAt)),
	)
}

// RenderUserList renders rows with the cursor on the focused index.
func RenderUserList(styleSet styles.Styles, rows []UserRow, focused int) string {
	if len(rows) == 0 {
		return EmptyUsers().Render(styleSet)
	}
	lines := make([]string, 0, len(rows))
	for i, row := range rows {
		lines = append(lines, RenderUserRow(styleSet, row, i == focused))
	}
	return strings.Join(lines, "\n")
}

func formatJoined(ts time.Time) string {
	if ts.IsZero() {
		return "--"
	}
	return ts.Format("2006-01-02")
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
