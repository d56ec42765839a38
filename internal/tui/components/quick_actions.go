package components

import (
	"fmt"
	"strings"

	"github.com/identiq/identiq/internal/tui/styles"
)

// QuickAction represents a keyboard-triggered action.
type QuickAction struct {
	Key     string // Keyboard key (e.g., "r", "d")
	Label   string // Display label (e.g., "Randomize", "Delete")
	Enabled bool   // Whether the action is available
}

// RenderQuickActionBar renders a horizontal bar of available quick actions.
// Format: "enter:Apply  r:Randomize  q:Quit"
func RenderQuickActionBar(styleSet styles.Styles, actions []QuickAction) string {
	var parts []string
	for _, action := range actions {
		if !action.Enabled {
			continue
		}
		keyStyle := styleSet.Accent.Bold(true)
		parts = append(parts, fmt.Sprintf("%s:%s", keyStyle.Render(action.Key), styleSet.Muted.Render(action.Label)))
	}
	return strings.Join(parts, "  ")
}

// DashboardQuickActions returns the actions for the themes view.
func DashboardQuickActions() []QuickAction {
	return []QuickAction{
		{Key: "←/→", Label: "Choose", Enabled: true},
		{Key: "enter", Label: "Apply", Enabled: true},
		{Key: "r", Label: "Randomize", Enabled: true},
		{Key: "tab", Label: "Users", Enabled: true},
		{Key: "q", Label: "Quit", Enabled: true},
	}
}

// UsersQuickActions returns the actions for the users view.
func UsersQuickActions(hasUsers bool) []QuickAction {
	return []QuickAction{
		{Key: "↑/↓", Label: "Move", Enabled: hasUsers},
		{Key: "d", Label: "Delete", Enabled: hasUsers},
		{Key: "tab", Label: "Themes", Enabled: true},
		{Key: "q", Label: "Quit", Enabled: true},
	}
}
