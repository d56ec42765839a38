package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/identiq/identiq/internal/config"
	"github.com/identiq/identiq/internal/daemon"
	"github.com/identiq/identiq/internal/db"
	"github.com/identiq/identiq/internal/logging"
	"github.com/identiq/identiq/internal/theme"
	"github.com/spf13/cobra"
)

var (
	serveHost     string
	servePort     int
	serveGRPCPort int
	serveNoWatch  bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "bind address (default: server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (default: server.port)")
	serveCmd.Flags().IntVar(&serveGRPCPort, "grpc-port", 0, "gRPC health port (default: server.grpc_port)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "do not reload the config file on change")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API",
	Long: `Run the dashboard HTTP API. The active theme is resolved once at startup and
published as CSS variables at /theme.css.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cmd)
	},
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg := GetConfig()
	logger := logging.Component("serve")
	out := cmd.ErrOrStderr()

	step := startProgress(out, "Opening database")
	database, err := openDatabase(ctx)
	if err != nil {
		step.Fail(err)
		return err
	}
	step.Done()
	defer database.Close()

	users := db.NewUserRepository(database)
	sheet := theme.NewCSSVars()
	session := newThemeSession(database, cfg, sheet)

	step = startProgress(out, "Resolving theme")
	res := session.Start(ctx)
	step.Done()
	logger.Info().Str("theme", res.ID).Str("color", res.Color).Msg("theme resolved")

	d, err := daemon.New(cfg, logging.Component("daemon"), daemon.Options{
		Hostname:   serveHost,
		Port:       servePort,
		GRPCPort:   serveGRPCPort,
		Version:    rootCmd.Version,
		Session:    session,
		StyleSheet: sheet,
		Users:      users,
		UserCount:  newUserCountFetcher(cfg, users),
		Events:     db.NewEventRepository(database),
	})
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if !serveNoWatch && configLoader != nil && configLoader.ConfigFile() != "" {
		configLoader.Watch(func(next *config.Config, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("ignoring invalid config change")
				return
			}
			applyReloadedConfig(d, next)
			logger.Info().Str("file", configLoader.ConfigFile()).Msg("config reloaded")
		})
	}

	go func() {
		select {
		case <-d.Ready():
			logger.Info().Str("addr", d.Addr().String()).Msg("dashboard API listening")
			if grpcAddr := d.GRPCAddr(); grpcAddr != nil {
				logger.Info().Str("addr", grpcAddr.String()).Msg("gRPC health listening")
			}
		case <-ctx.Done():
		}
	}()

	return d.Run(ctx)
}

// applyReloadedConfig applies the settings that can change without a restart.
func applyReloadedConfig(d *daemon.Daemon, cfg *config.Config) {
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logging.Init(logging.Config{Level: level, Format: cfg.Logging.Format})
	d.RateLimiter().SetEnabled(cfg.Server.RateLimit.Enabled)
}
