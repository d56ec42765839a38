package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const tablePadding = 2

// writeTable prints headers and rows as left-aligned columns. Cell widths are
// measured with lipgloss, so styled cells such as swatches keep columns aligned.
func writeTable(out io.Writer, headers []string, rows [][]string) error {
	lines := rows
	if len(headers) > 0 {
		lines = append([][]string{headers}, rows...)
	}

	var widths []int
	for _, row := range lines {
		for i, cell := range row {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	for _, row := range lines {
		var line strings.Builder
		for i, cell := range row {
			line.WriteString(cell)
			if i < len(row)-1 {
				line.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+tablePadding))
			}
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func formatPercent(share float64) string {
	return fmt.Sprintf("%.0f%%", share*100)
}
