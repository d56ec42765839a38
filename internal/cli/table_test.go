package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"
)

func TestWriteTableAlignsStyledCells(t *testing.T) {
	styled := "\x1b[38;2;47;111;102m██\x1b[0m #2f6f66"

	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, []string{"ID", "COLOR", "SELECTED"}, [][]string{
		{"teal", styled, "*"},
		{"random", "(generated)", ""},
	}))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	// Every row's third column starts at the same display offset.
	header := lipgloss.Width(lines[0][:strings.Index(lines[0], "SELECTED")])
	teal := lipgloss.Width(lines[1][:strings.LastIndex(lines[1], "*")])
	require.Equal(t, header, teal)
	require.Equal(t, "random  (generated)", lines[2])
}

func TestWriteTableWithoutHeaders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, nil, [][]string{
		{"Theme", "light"},
		{"Accent RGB", "201, 106, 43"},
	}))
	require.Equal(t, "Theme       light\nAccent RGB  201, 106, 43\n", buf.String())
}
