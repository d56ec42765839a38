package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/identiq/identiq/internal/models"
	"github.com/identiq/identiq/internal/tui/styles"
)

// RenderDistribution renders one horizontal bar per theme, scaled so the
// largest share fills width cells.
func RenderDistribution(styleSet styles.Styles, shares []models.ThemeShare, width int) string {
	if len(shares) == 0 {
		return EmptyDistribution().Render(styleSet)
	}
	if width < 1 {
		width = 1
	}

	largest, total := 0, 0
	for _, s := range shares {
		total += s.Value
		if s.Value > largest {
			largest = s.Value
		}
	}

	lines := make([]string, 0, len(shares))
	for _, s := range shares {
		cells := 0
		if largest > 0 {
			cells = s.Value * width / largest
		}
		if s.Value > 0 && cells == 0 {
			cells = 1
		}

		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat("█", cells))
		pct := 0.0
		if total > 0 {
			pct = float64(s.Value) / float64(total) * 100
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			styleSet.Text.Render(fmt.Sprintf("%-10s", truncate(s.Name, 10))),
			bar,
			styleSet.Muted.Render(fmt.Sprintf("%d (%.0f%%)", s.Value, pct)),
		))
	}
	return strings.Join(lines, "\n")
}
