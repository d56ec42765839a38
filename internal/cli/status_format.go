package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/identiq/identiq/internal/theme"
)

// ANSI color indexes used for status labels.
const (
	colorRed     = "1"
	colorGreen   = "2"
	colorYellow  = "3"
	colorMagenta = "5"
	colorCyan    = "6"
)

func colorEnabled() bool {
	if noColor || IsJSONOutput() || IsJSONLOutput() {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return true
}

func colorize(text, color string) string {
	if !colorEnabled() || color == "" {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(text)
}

// swatch renders hex as a colored block followed by the hex value.
func swatch(hex string) string {
	if hex == "" {
		return "-"
	}
	if !colorEnabled() {
		return hex
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██") + " " + hex
}

func formatThemeState(state theme.State) string {
	label, color := statusLabelForThemeState(state)
	return colorize(formatStatusLabel(label, state.String()), color)
}

func statusLabelForThemeState(state theme.State) (string, string) {
	switch state {
	case theme.StateResolved:
		return "OK", colorGreen
	case theme.StateLoading:
		return "BUSY", colorCyan
	default:
		return "WAIT", colorYellow
	}
}

func formatSelected(selected bool) string {
	if selected {
		return colorize("yes", colorGreen)
	}
	return "no"
}

func formatForeground(p theme.Palette) string {
	if p.Foreground == theme.DarkForeground {
		return colorize("dark text", colorMagenta)
	}
	return "light text"
}

func formatStatusLabel(label, status string) string {
	normalized := strings.TrimSpace(status)
	if normalized != "" {
		normalized = strings.ReplaceAll(normalized, "_", " ")
	}
	if normalized == "" {
		return label
	}
	return fmt.Sprintf("%s %s", label, normalized)
}
