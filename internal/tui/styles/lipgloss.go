package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/identiq/identiq/internal/theme"
)

// Styles contains lipgloss styles derived from theme tokens.
type Styles struct {
	Theme    Theme
	Title    lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Accent2  lipgloss.Style
	Header   lipgloss.Style
	Badge    lipgloss.Style
	Button   lipgloss.Style
	Applied  lipgloss.Style
	Panel    lipgloss.Style
	Border   lipgloss.Style
	Focus    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Selected lipgloss.Style
}

// DefaultStyles builds styles from the default theme.
func DefaultStyles() Styles {
	return BuildStyles(DefaultTheme)
}

// BuildStyles converts theme tokens into lipgloss styles.
func BuildStyles(t Theme) Styles {
	tokens := t.Tokens

	return Styles{
		Theme:    t,
		Title:    lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)).Bold(true),
		Text:     lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.TextMuted)),
		Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Accent)),
		Accent2:  lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Accent2)),
		Header:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.HeaderText)).Background(lipgloss.Color(tokens.HeaderBG)).Bold(true).Padding(0, 1),
		Badge:    lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.HeaderText)).Background(lipgloss.Color(tokens.Badge)).Padding(0, 1),
		Button:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Accent)).BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(tokens.Accent)).Padding(0, 1),
		Applied:  lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.HeaderText)).Background(lipgloss.Color(tokens.Accent)).Padding(0, 1),
		Panel:    lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)).Background(lipgloss.Color(tokens.Panel)).BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color(tokens.Border)),
		Border:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Border)),
		Focus:    lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Focus)).Bold(true),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Success)),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Warning)),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Error)),
		Info:     lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Info)),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Focus)).Bold(true),
	}
}

// ForPalette builds styles for the named base theme with the dashboard
// palette applied. Unknown names fall back to the default theme.
func ForPalette(base string, p theme.Palette) Styles {
	t, ok := Themes[base]
	if !ok {
		t = DefaultTheme
	}
	return BuildStyles(WithPalette(t, p))
}
