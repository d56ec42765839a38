// Package components provides reusable TUI components.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/identiq/identiq/internal/tui/styles"
)

const themeCardWidth = 22

// ThemeCard contains data needed to render one catalog entry.
type ThemeCard struct {
	Label string
	// Color is the entry's base color. Empty for an unresolved random theme.
	Color    string
	Selected bool
	Focused  bool
}

// RenderThemeCard renders a swatch, the label and an Apply/Applied button.
func RenderThemeCard(styleSet styles.Styles, card ThemeCard) string {
	swatch := styleSet.Muted.Render(strings.Repeat("░", themeCardWidth-4))
	if card.Color != "" {
		swatch = lipgloss.NewStyle().
			Background(lipgloss.Color(card.Color)).
			Render(strings.Repeat(" ", themeCardWidth-4))
	}

	label := styleSet.Text.Render(defaultIfEmpty(card.Label, "Theme"))
	if card.Focused {
		label = styleSet.Selected.Render("› " + defaultIfEmpty(card.Label, "Theme"))
	}

	button := styleSet.Button.Render("Apply")
	if card.Selected {
		button = styleSet.Applied.Render("Applied")
	}

	content := strings.Join([]string{swatch, swatch, label, button}, "\n")

	border := styleSet.Theme.Tokens.Border
	if card.Focused {
		border = styleSet.Theme.Tokens.Focus
	}
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1).
		Width(themeCardWidth).
		MaxWidth(themeCardWidth + 2)

	return cardStyle.Render(content)
}

// RenderThemeGrid lays cards out horizontally.
func RenderThemeGrid(styleSet styles.Styles, cards []ThemeCard) string {
	rendered := make([]string, 0, len(cards))
	for _, card := range cards {
		rendered = append(rendered, RenderThemeCard(styleSet, card))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func defaultIfEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
