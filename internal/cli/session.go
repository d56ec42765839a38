package cli

import (
	"github.com/identiq/identiq/internal/config"
	"github.com/identiq/identiq/internal/db"
	"github.com/identiq/identiq/internal/events"
	"github.com/identiq/identiq/internal/logging"
	"github.com/identiq/identiq/internal/theme"
	"github.com/identiq/identiq/internal/usercount"
)

// newThemeSession wires a theme session to the database. Theme changes are
// recorded as events; target receives the derived style variables.
func newThemeSession(database *db.DB, cfg *config.Config, target theme.StyleTarget) *theme.Session {
	logger := logging.Component("theme")

	store := theme.NewStore(db.NewKVRepository(database), theme.WithStoreLogger(logger))
	resolver := theme.NewResolver(store,
		theme.WithDefaultTheme(cfg.Dashboard.DefaultTheme),
		theme.WithResolverLogger(logger),
	)
	return theme.NewSession(store, resolver, target,
		theme.WithSessionLogger(logger),
		theme.WithChangeHook(events.ThemeHook(db.NewEventRepository(database), logger)),
	)
}

// newUserCountFetcher polls dashboard.user_count_url when set and counts the
// local users table otherwise.
func newUserCountFetcher(cfg *config.Config, users usercount.Counter) usercount.Fetcher {
	opts := []usercount.Option{
		usercount.WithFallback(cfg.Dashboard.FallbackUserCount),
		usercount.WithTimeout(cfg.Dashboard.UserCountTimeout),
		usercount.WithLogger(logging.Component("usercount")),
	}
	if cfg.Dashboard.UserCountURL != "" {
		return usercount.NewClient(cfg.Dashboard.UserCountURL, opts...)
	}
	return usercount.FromCounter(users, opts...)
}
