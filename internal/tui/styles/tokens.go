package styles

import "github.com/identiq/identiq/internal/theme"

// ThemeTokens defines the semantic color roles for the TUI.
type ThemeTokens struct {
	Background string
	Panel      string
	Text       string
	TextMuted  string
	Border     string
	Accent     string
	Accent2    string
	Focus      string
	HeaderBG   string
	HeaderText string
	Badge      string
	Badge2     string
	Success    string
	Warning    string
	Error      string
	Info       string
}

// Theme bundles a palette with a name.
type Theme struct {
	Name   string
	Tokens ThemeTokens

	// FixedFocus keeps Tokens.Focus when an accent palette is applied.
	FixedFocus bool
}

// Themes lists the base palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// WithPalette overlays the dashboard accent palette onto a base theme.
// An empty accent leaves the base tokens untouched.
func WithPalette(base Theme, p theme.Palette) Theme {
	if p.Accent == "" {
		return base
	}

	t := base
	t.Tokens.Accent = p.Accent
	t.Tokens.Accent2 = p.Accent2
	if !base.FixedFocus {
		t.Tokens.Focus = p.Accent2
	}
	t.Tokens.HeaderBG = p.HeaderBG
	t.Tokens.HeaderText = p.Foreground
	t.Tokens.Badge = p.TopLeftBG
	t.Tokens.Badge2 = p.TopLeftBG2
	return t
}
