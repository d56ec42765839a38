// Package cli implements the identiq command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/identiq/identiq/internal/config"
	"github.com/identiq/identiq/internal/db"
	"github.com/identiq/identiq/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile        string
	logLevel       string
	jsonOutput     bool
	jsonlOutput    bool
	nonInteractive bool
	noColor        bool
	noProgress     bool

	appConfig    *config.Config
	configLoader *config.Loader
)

// annotationSkipConfig marks commands that run before a config exists.
const annotationSkipConfig = "identiq/skip-config"

var rootCmd = &cobra.Command{
	Use:           "identiq",
	Short:         "User management dashboard",
	Long:          "identiq serves and renders a themed user-management dashboard.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[annotationSkipConfig] == "true" {
			logging.Init(logging.Config{Level: logLevelOr("info")})
			return nil
		}
		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/identiq/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	rootCmd.PersistentFlags().BoolVar(&jsonlOutput, "jsonl", false, "output JSON lines")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "never prompt; fail instead of launching the TUI")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress output")
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd.Version = version
	return rootCmd.Execute()
}

func loadConfig() error {
	configLoader = config.NewLoader()
	cfg, err := configLoader.Load(cfgFile)
	if err != nil {
		return &PreflightError{
			Message:  err.Error(),
			Hint:     "Fix the config file or regenerate it",
			NextStep: "identiq init --force",
		}
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	appConfig = cfg

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	return nil
}

func logLevelOr(fallback string) string {
	if logLevel != "" {
		return logLevel
	}
	return fallback
}

// GetConfig returns the loaded configuration, or the defaults before the root command ran.
func GetConfig() *config.Config {
	if appConfig != nil {
		return appConfig
	}
	return config.DefaultConfig()
}

// openDatabase opens and migrates the configured database.
func openDatabase(ctx context.Context) (*db.DB, error) {
	cfg := GetConfig()
	database, err := db.Open(db.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: time.Duration(cfg.Database.BusyTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, &PreflightError{
			Message:  fmt.Sprintf("cannot open database: %v", err),
			Hint:     "Check database.path and its directory permissions",
			NextStep: "identiq init",
		}
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

// IsJSONOutput reports whether --json was given.
func IsJSONOutput() bool {
	return jsonOutput
}

// IsJSONLOutput reports whether --jsonl was given.
func IsJSONLOutput() bool {
	return jsonlOutput
}

// WriteOutput encodes v as JSON, or one JSON line per element with --jsonl.
func WriteOutput(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	if IsJSONLOutput() {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice {
			for i := 0; i < rv.Len(); i++ {
				if err := enc.Encode(rv.Index(i).Interface()); err != nil {
					return err
				}
			}
			return nil
		}
		return enc.Encode(v)
	}
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
