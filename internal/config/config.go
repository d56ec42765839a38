// Package config defines identiq's configuration and its defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/identiq/identiq/internal/theme"
	"github.com/identiq/identiq/internal/usercount"
)

// Config is the root configuration.
type Config struct {
	Global    GlobalConfig    `mapstructure:"global" yaml:"global"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	TUI       TUIConfig       `mapstructure:"tui" yaml:"tui"`
}

// GlobalConfig holds process-wide settings.
type GlobalConfig struct {
	// DataDir holds the database and other state.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

// DatabaseConfig configures the SQLite database.
type DatabaseConfig struct {
	// Path is the database file. Defaults to <data_dir>/identiq.db.
	Path string `mapstructure:"path" yaml:"path"`

	// BusyTimeoutMs is how long SQLite waits on a locked database.
	BusyTimeoutMs int `mapstructure:"busy_timeout_ms" yaml:"busy_timeout_ms"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig configures the HTTP daemon.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`

	// GRPCPort serves the gRPC health service when non-zero.
	GRPCPort int `mapstructure:"grpc_port" yaml:"grpc_port"`

	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// RateLimitConfig configures the per-route token buckets on mutating endpoints.
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" yaml:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size" yaml:"burst_size"`

	// GlobalRequestsPerSecond caps all routes together. Zero disables the cap.
	GlobalRequestsPerSecond float64 `mapstructure:"global_requests_per_second" yaml:"global_requests_per_second"`
	GlobalBurstSize         int     `mapstructure:"global_burst_size" yaml:"global_burst_size"`
}

// DashboardConfig configures theme and user-count behavior.
type DashboardConfig struct {
	DefaultTheme      string `mapstructure:"default_theme" yaml:"default_theme"`
	FallbackUserCount int    `mapstructure:"fallback_user_count" yaml:"fallback_user_count"`

	// UserCountURL is polled for the user count. Empty reads the local database.
	UserCountURL     string        `mapstructure:"user_count_url" yaml:"user_count_url"`
	UserCountTimeout time.Duration `mapstructure:"user_count_timeout" yaml:"user_count_timeout"`

	// WelcomeName is shown in the dashboard greeting.
	WelcomeName string `mapstructure:"welcome_name" yaml:"welcome_name"`
}

// TUIConfig configures the terminal dashboard.
type TUIConfig struct {
	// Theme is the base palette the accent is layered onto: default or high-contrast.
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	dataDir := DefaultDataDir()
	return &Config{
		Global: GlobalConfig{DataDir: dataDir},
		Database: DatabaseConfig{
			Path:          filepath.Join(dataDir, "identiq.db"),
			BusyTimeoutMs: 5000,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ShutdownTimeout: 5 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: 5,
				BurstSize:         10,
			},
		},
		Dashboard: DashboardConfig{
			DefaultTheme:      theme.DefaultID,
			FallbackUserCount: usercount.DefaultFallback,
			UserCountTimeout:  3 * time.Second,
			WelcomeName:       "admin",
		},
		TUI: TUIConfig{Theme: "default"},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var problems []string

	if c.Database.Path == "" {
		problems = append(problems, "database.path is required")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		problems = append(problems, fmt.Sprintf("server.grpc_port %d out of range", c.Server.GRPCPort))
	}
	if c.Server.GRPCPort != 0 && c.Server.GRPCPort == c.Server.Port {
		problems = append(problems, "server.grpc_port must differ from server.port")
	}
	if rl := c.Server.RateLimit; rl.Enabled && (rl.RequestsPerSecond <= 0 || rl.BurstSize <= 0) {
		problems = append(problems, "server.rate_limit requires positive requests_per_second and burst_size")
	}
	if rl := c.Server.RateLimit; rl.GlobalRequestsPerSecond < 0 || (rl.GlobalRequestsPerSecond > 0 && rl.GlobalBurstSize <= 0) {
		problems = append(problems, "server.rate_limit.global_requests_per_second needs a positive global_burst_size")
	}
	if _, ok := theme.Lookup(c.Dashboard.DefaultTheme); !ok {
		problems = append(problems, fmt.Sprintf("dashboard.default_theme %q is not one of %s",
			c.Dashboard.DefaultTheme, strings.Join(theme.IDs(), ", ")))
	}
	if c.Dashboard.FallbackUserCount < 0 {
		problems = append(problems, "dashboard.fallback_user_count must not be negative")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q must be text or json", c.Logging.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/identiq or ~/.config/identiq.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "identiq")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".identiq")
	}
	return filepath.Join(home, ".config", "identiq")
}

// DefaultDataDir returns $XDG_DATA_HOME/identiq or ~/.local/share/identiq.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "identiq")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".identiq")
	}
	return filepath.Join(home, ".local", "share", "identiq")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
