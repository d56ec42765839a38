package cli

import (
	"github.com/identiq/identiq/internal/db"
	"github.com/identiq/identiq/internal/logging"
	"github.com/identiq/identiq/internal/tui"
	"github.com/spf13/cobra"
)

var uiBaseTheme string

func init() {
	rootCmd.AddCommand(uiCmd)

	uiCmd.Flags().StringVar(&uiBaseTheme, "base", "", "base palette: default or high-contrast (default: tui.theme)")
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the dashboard TUI",
	Long:  "Launch the themed user-management dashboard in the terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func runTUI(cmd *cobra.Command) error {
	if IsNonInteractive() {
		return &PreflightError{
			Message:  "TUI requires an interactive terminal",
			Hint:     "Run without --non-interactive and with a TTY, or use CLI subcommands",
			NextStep: "identiq theme show",
		}
	}

	ctx := cmd.Context()
	cfg := GetConfig()

	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	users := db.NewUserRepository(database)

	base := cfg.TUI.Theme
	if uiBaseTheme != "" {
		base = uiBaseTheme
	}

	return tui.Run(ctx, tui.Options{
		// The TUI renders from the palette directly, so no style target is needed.
		Session:     newThemeSession(database, cfg, nil),
		Users:       users,
		Events:      db.NewEventRepository(database),
		UserCount:   newUserCountFetcher(cfg, users),
		WelcomeName: cfg.Dashboard.WelcomeName,
		BaseTheme:   base,
		Logger:      logging.Component("tui"),
	})
}
