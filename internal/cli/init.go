package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/identiq/identiq/internal/config"
	"github.com/identiq/identiq/internal/db"
	"github.com/spf13/cobra"
)

var (
	initForce bool

	// configDirFunc is swapped out in tests.
	configDirFunc = defaultConfigDir
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
}

var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Create the config file and database",
	Long:        "Write a default config file, create the data directory and migrate the database.",
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		results := []initResult{
			createConfigFile(),
			createDataDir(),
			initDatabase(cmd.Context()),
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), initResultsJSON(results))
		}

		out := cmd.OutOrStdout()
		failed := false
		for _, r := range results {
			fmt.Fprintf(out, "%-14s %s  %s\n", r.name, formatInitStatus(r.status), r.message)
			if r.status == "failed" {
				failed = true
			}
		}
		if failed {
			return errors.New("initialization incomplete")
		}
		fmt.Fprintln(out, "\nNext: identiq serve, or identiq ui")
		return nil
	},
}

// initResult is the outcome of one init step: done, skipped or failed.
type initResult struct {
	name    string
	status  string
	message string
}

type initResultJSON struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func initResultsJSON(results []initResult) []initResultJSON {
	out := make([]initResultJSON, 0, len(results))
	for _, r := range results {
		out = append(out, initResultJSON{Name: r.name, Status: r.status, Message: r.message})
	}
	return out
}

func formatInitStatus(status string) string {
	switch status {
	case "done":
		return colorize("done   ", colorGreen)
	case "skipped":
		return colorize("skipped", colorYellow)
	default:
		return colorize("failed ", colorRed)
	}
}

func defaultConfigDir() string {
	return config.DefaultConfigDir()
}

func configPath() string {
	return filepath.Join(configDirFunc(), "config.yaml")
}

func createConfigFile() initResult {
	result := initResult{name: "Config file"}
	path := configPath()

	err := config.Write(path, config.DefaultConfig(), initForce)
	switch {
	case errors.Is(err, config.ErrConfigExists):
		result.status = "skipped"
		result.message = fmt.Sprintf("%s already exists (use --force to overwrite)", path)
	case err != nil:
		result.status = "failed"
		result.message = err.Error()
	default:
		result.status = "done"
		result.message = path
	}
	return result
}

func createDataDir() initResult {
	result := initResult{name: "Data directory"}
	dir := config.DefaultConfig().Global.DataDir

	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		result.status = "skipped"
		result.message = dir
		return result
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.status = "failed"
		result.message = err.Error()
		return result
	}
	result.status = "done"
	result.message = dir
	return result
}

func initDatabase(ctx context.Context) initResult {
	result := initResult{name: "Database"}
	cfg := config.DefaultConfig()

	database, err := db.Open(db.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: time.Duration(cfg.Database.BusyTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		result.status = "failed"
		result.message = err.Error()
		return result
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		result.status = "failed"
		result.message = err.Error()
		return result
	}
	version, err := database.SchemaVersion(ctx)
	if err != nil {
		result.status = "failed"
		result.message = err.Error()
		return result
	}
	result.status = "done"
	result.message = fmt.Sprintf("%s (schema v%d)", database.Path(), version)
	return result
}
