package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. IDENTIQ_SERVER_PORT.
const EnvPrefix = "IDENTIQ"

// Loader reads configuration through viper and can watch it for changes.
type Loader struct {
	mu sync.Mutex
	v  *viper.Viper
}

// NewLoader creates a Loader with defaults and environment bindings registered.
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return &Loader{v: v}
}

// Load reads the config file at path, or searches the default locations when
// path is empty. A missing file is not an error.
func (l *Loader) Load(path string) (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if path != "" {
		l.v.SetConfigFile(expandHome(path))
	} else {
		l.v.SetConfigName("config")
		l.v.AddConfigPath(DefaultConfigDir())
		l.v.AddConfigPath(".")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return l.decode()
}

// ConfigFile returns the file the loader read, if any.
func (l *Loader) ConfigFile() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.v.ConfigFileUsed()
}

// Watch re-reads the config file whenever it changes and passes the result to
// onChange. Invalid configs are reported through the error argument.
func (l *Loader) Watch(onChange func(*Config, error)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		l.mu.Lock()
		cfg, err := l.decode()
		l.mu.Unlock()
		onChange(cfg, err)
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Global.DataDir = expandHome(cfg.Global.DataDir)
	cfg.Database.Path = expandHome(cfg.Database.Path)
	// Database.Path follows a relocated data dir unless set explicitly.
	if !l.v.IsSet("database.path") || cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(cfg.Global.DataDir, "identiq.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads configuration from path using a fresh Loader.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("global.data_dir", cfg.Global.DataDir)
	v.SetDefault("database.busy_timeout_ms", cfg.Database.BusyTimeoutMs)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.grpc_port", cfg.Server.GRPCPort)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("server.rate_limit.enabled", cfg.Server.RateLimit.Enabled)
	v.SetDefault("server.rate_limit.requests_per_second", cfg.Server.RateLimit.RequestsPerSecond)
	v.SetDefault("server.rate_limit.burst_size", cfg.Server.RateLimit.BurstSize)
	v.SetDefault("server.rate_limit.global_requests_per_second", cfg.Server.RateLimit.GlobalRequestsPerSecond)
	v.SetDefault("server.rate_limit.global_burst_size", cfg.Server.RateLimit.GlobalBurstSize)
	v.SetDefault("dashboard.default_theme", cfg.Dashboard.DefaultTheme)
	v.SetDefault("dashboard.fallback_user_count", cfg.Dashboard.FallbackUserCount)
	v.SetDefault("dashboard.user_count_url", cfg.Dashboard.UserCountURL)
	v.SetDefault("dashboard.user_count_timeout", cfg.Dashboard.UserCountTimeout)
	v.SetDefault("dashboard.welcome_name", cfg.Dashboard.WelcomeName)
	v.SetDefault("tui.theme", cfg.TUI.Theme)

	// AutomaticEnv only applies to keys viper knows about.
	_ = v.BindEnv("database.path")
}
