package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "light", cfg.Dashboard.DefaultTheme)
	require.Equal(t, 145, cfg.Dashboard.FallbackUserCount)
	require.Equal(t, filepath.Join(cfg.Global.DataDir, "identiq.db"), cfg.Database.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "unknown theme", mutate: func(c *Config) { c.Dashboard.DefaultTheme = "neon" }, wantErr: "default_theme"},
		{name: "port range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "same ports", mutate: func(c *Config) { c.Server.GRPCPort = c.Server.Port }, wantErr: "grpc_port"},
		{name: "rate limit", mutate: func(c *Config) { c.Server.RateLimit.BurstSize = 0 }, wantErr: "rate_limit"},
		{name: "global limit without burst", mutate: func(c *Config) { c.Server.RateLimit.GlobalRequestsPerSecond = 50 }, wantErr: "global_burst_size"},
		{name: "log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
		{name: "no database", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path"},
		{name: "disabled rate limit", mutate: func(c *Config) {
			c.Server.RateLimit = RateLimitConfig{Enabled: false}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	require.Equal(t, "/custom/config/identiq", DefaultConfigDir())

	t.Setenv("XDG_DATA_HOME", "/custom/data")
	require.Equal(t, "/custom/data/identiq", DefaultDataDir())
}

func TestWriteAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identiq", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Port = 9191
	cfg.Dashboard.DefaultTheme = "teal"
	cfg.Dashboard.UserCountTimeout = 750 * time.Millisecond
	require.NoError(t, Write(path, cfg, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "# identiq Configuration File"))
	for _, section := range []string{"global:", "database:", "logging:", "server:", "dashboard:"} {
		require.Contains(t, string(data), section)
	}

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(data, &raw))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9191, loaded.Server.Port)
	require.Equal(t, "teal", loaded.Dashboard.DefaultTheme)
	require.Equal(t, 750*time.Millisecond, loaded.Dashboard.UserCountTimeout)
}

func TestWriteRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o644))

	require.ErrorIs(t, Write(path, DefaultConfig(), false), ErrConfigExists)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "existing", string(content))

	require.NoError(t, Write(path, DefaultConfig(), true))
}
