package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/identiq/identiq/internal/color"
	"github.com/identiq/identiq/internal/theme"
	"github.com/spf13/cobra"
)

var (
	themeCSSSelector string
	themeCSSCopy     bool
)

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.AddCommand(themeListCmd)
	themeCmd.AddCommand(themeShowCmd)
	themeCmd.AddCommand(themeSetCmd)
	themeCmd.AddCommand(themeRandomizeCmd)
	themeCmd.AddCommand(themeCSSCmd)
	themeCmd.AddCommand(themePreviewCmd)

	themeCSSCmd.Flags().StringVar(&themeCSSSelector, "selector", ":root", "CSS selector for the variable block")
	themeCSSCmd.Flags().BoolVar(&themeCSSCopy, "copy", false, "copy the stylesheet to the clipboard")
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Inspect and change the dashboard theme",
}

// themeView is the JSON shape of the active theme.
type themeView struct {
	ID      string        `json:"id"`
	Color   string        `json:"color"`
	State   string        `json:"state"`
	Palette theme.Palette `json:"palette"`
}

// withThemeSession opens the database, starts a session and calls fn.
func withThemeSession(ctx context.Context, target theme.StyleTarget, fn func(*theme.Session) error) error {
	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	session := newThemeSession(database, GetConfig(), target)
	session.Start(ctx)
	return fn(session)
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available themes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withThemeSession(cmd.Context(), nil, func(session *theme.Session) error {
			return writeThemeList(cmd.OutOrStdout(), session)
		})
	},
}

func writeThemeList(out io.Writer, session *theme.Session) error {
	entries := session.Catalog()
	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, entries)
	}

	current, _ := session.Current()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		hex := e.Color
		if e.IsRandom() {
			hex = "(generated)"
			if e.Selected {
				hex = current.Color
			}
		}
		rows = append(rows, []string{e.ID, e.Label, swatch(hex), formatSelected(e.Selected)})
	}
	return writeTable(out, []string{"ID", "NAME", "COLOR", "SELECTED"}, rows)
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active theme and its palette",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withThemeSession(cmd.Context(), nil, func(session *theme.Session) error {
			return writeThemeView(cmd.OutOrStdout(), session)
		})
	},
}

func writeThemeView(out io.Writer, session *theme.Session) error {
	res, palette := session.Current()
	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, themeView{
			ID:      res.ID,
			Color:   res.Color,
			State:   session.State().String(),
			Palette: palette,
		})
	}

	rows := append([][]string{
		{"Theme", res.ID},
		{"State", formatThemeState(session.State())},
	}, paletteRows(palette)...)
	return writeTable(out, nil, rows)
}

func paletteRows(palette theme.Palette) [][]string {
	return [][]string{
		{"Accent", swatch(palette.Accent)},
		{"Accent RGB", palette.AccentRGB},
		{"Accent 2", swatch(palette.Accent2)},
		{"Foreground", swatch(palette.Foreground) + "  " + formatForeground(palette)},
		{"Header", swatch(palette.HeaderBG)},
		{"Corner", swatch(palette.TopLeftBG) + " / " + palette.TopLeftBG2},
		{"Luminance", strconv.FormatFloat(palette.Luminance, 'f', 3, 64)},
	}
}

var themeSetCmd = &cobra.Command{
	Use:       "set <theme>",
	Short:     "Select a theme",
	Long:      "Select and persist a theme: " + strings.Join(theme.IDs(), ", ") + ".",
	Args:      cobra.ExactArgs(1),
	ValidArgs: theme.IDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withThemeSession(cmd.Context(), nil, func(session *theme.Session) error {
			if _, err := session.Select(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, theme.ErrUnknownTheme) {
					return &PreflightError{
						Message:  fmt.Sprintf("unknown theme %q", args[0]),
						Hint:     "Valid themes: " + strings.Join(theme.IDs(), ", "),
						NextStep: "identiq theme list",
					}
				}
				return err
			}
			return writeThemeView(cmd.OutOrStdout(), session)
		})
	},
}

var themeRandomizeCmd = &cobra.Command{
	Use:   "randomize",
	Short: "Switch to a freshly generated random color",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withThemeSession(cmd.Context(), nil, func(session *theme.Session) error {
			session.Randomize(cmd.Context())
			return writeThemeView(cmd.OutOrStdout(), session)
		})
	},
}

var themeCSSCmd = &cobra.Command{
	Use:   "css",
	Short: "Print the active theme as CSS custom properties",
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet := theme.NewCSSVars()
		return withThemeSession(cmd.Context(), sheet, func(session *theme.Session) error {
			css := sheet.Render(themeCSSSelector)
			if IsJSONOutput() || IsJSONLOutput() {
				return WriteOutput(cmd.OutOrStdout(), sheet.Snapshot())
			}
			if themeCSSCopy {
				if err := clipboard.WriteAll(css); err != nil {
					return fmt.Errorf("failed to copy to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Copied theme CSS to clipboard.")
			}
			_, err := io.WriteString(cmd.OutOrStdout(), css)
			return err
		})
	},
}

var themePreviewCmd = &cobra.Command{
	Use:   "preview <hex>",
	Short: "Show the palette derived from any base color",
	Long:  "Show the palette derived from a 3- or 6-digit hex color without changing the active theme.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := color.ParseHex(args[0])
		if err != nil {
			return &PreflightError{
				Message: err.Error(),
				Hint:    "Use #rgb or #rrggbb, e.g. #2f6f66",
			}
		}

		palette := theme.Derive(base.Hex())
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), palette)
		}
		return writeTable(cmd.OutOrStdout(), nil, paletteRows(palette))
	},
}
