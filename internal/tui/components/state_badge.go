package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/identiq/identiq/internal/theme"
	"github.com/identiq/identiq/internal/tui/styles"
)

// RenderThemeStateBadge renders the theme session state with icon and color.
func RenderThemeStateBadge(styleSet styles.Styles, state theme.State) string {
	icon, label, style := stateDescriptor(styleSet, state)
	return style.Render(fmt.Sprintf("%s %s", icon, label))
}

func stateDescriptor(styleSet styles.Styles, state theme.State) (string, string, lipgloss.Style) {
	switch state {
	case theme.StateResolved:
		return "OK", "Themed", styleSet.Success
	case theme.StateLoading:
		return "~", "Loading", styleSet.Info
	default:
		return "-", "Unthemed", styleSet.Muted
	}
}
