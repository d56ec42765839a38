package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/identiq/identiq/internal/db"
	"github.com/identiq/identiq/internal/models"
	"github.com/identiq/identiq/internal/theme"
	"github.com/identiq/identiq/internal/usercount"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db      *db.DB
	session *theme.Session
	sheet   *theme.CSSVars
	events  *db.EventRepository
	handler http.Handler
}

func newTestEnv(t *testing.T, opts ...ServerOption) *testEnv {
	t.Helper()

	database, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.Migrate(context.Background()))

	store := theme.NewStore(db.NewKVRepository(database))
	sheet := theme.NewCSSVars()
	session := theme.NewSession(store, theme.NewResolver(store), sheet)
	session.Start(context.Background())

	eventRepo := db.NewEventRepository(database)
	base := []ServerOption{
		WithVersion("test-version"),
		WithStyleSheet(sheet),
		WithUsers(db.NewUserRepository(database)),
		WithEventRepository(eventRepo),
	}
	server := NewServer(zerolog.Nop(), session, append(base, opts...)...)

	return &testEnv{
		db:      database,
		session: session,
		sheet:   sheet,
		events:  eventRepo,
		handler: server.Handler(),
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[healthResponse](t, rec)
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "test-version", resp.Version)
}

func TestUserCountFromDatabase(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/users/count", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, map[string]int{"count": 5}, decode[map[string]int](t, rec))
}

func TestUserCountFallback(t *testing.T) {
	env := newTestEnv(t, WithUserCount(usercount.FromCounter(failingCounter{})))

	rec := env.do(t, http.MethodGet, "/api/users/count", "")
	require.Equal(t, map[string]int{"count": usercount.DefaultFallback}, decode[map[string]int](t, rec))
}

type failingCounter struct{}

func (failingCounter) Count(context.Context) (int, error) {
	return 0, context.DeadlineExceeded
}

func TestListAndDeleteUsers(t *testing.T) {
	env := newTestEnv(t)

	users := decode[[]models.User](t, env.do(t, http.MethodGet, "/api/users", ""))
	require.Len(t, users, 5)

	rec := env.do(t, http.MethodDelete, "/api/users/u_1002", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/users/u_1002", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	users = decode[[]models.User](t, env.do(t, http.MethodGet, "/api/users", ""))
	require.Len(t, users, 4)

	recorded, err := env.events.ListByEntity(context.Background(), models.EntityTypeUser, "u_1002", 10)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	require.Equal(t, models.EventTypeUserDeleted, recorded[0].Type)
}

func TestThemeDistribution(t *testing.T) {
	env := newTestEnv(t)

	shares := decode[[]models.ThemeShare](t, env.do(t, http.MethodGet, "/api/users/theme-distribution", ""))
	require.Equal(t, []models.ThemeShare{
		{Name: "Sunset", Color: "#c96a2b", Value: 2},
		{Name: "Ocean", Color: "#2b9fc9", Value: 2},
		{Name: "Midnight", Color: "#111827", Value: 1},
	}, shares)
}

func TestGetThemeDefaults(t *testing.T) {
	env := newTestEnv(t)

	resp := decode[themeResponse](t, env.do(t, http.MethodGet, "/api/theme", ""))
	require.Equal(t, theme.IDLight, resp.ID)
	require.Equal(t, "#c96a2b", resp.Color)
	require.Equal(t, theme.Derive("#c96a2b"), resp.Palette)
}

func TestListThemesMarksSelection(t *testing.T) {
	env := newTestEnv(t)

	entries := decode[[]theme.Entry](t, env.do(t, http.MethodGet, "/api/themes", ""))
	require.Len(t, entries, len(theme.Themes))
	for _, entry := range entries {
		require.Equal(t, entry.ID == theme.IDLight, entry.Selected, entry.ID)
		require.Equal(t, "/themeChange.webp", entry.Image)
	}
}

func TestSelectTheme(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/theme", `{"id":"teal"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "#2f6f66", decode[themeResponse](t, rec).Color)

	css := env.do(t, http.MethodGet, "/theme.css", "")
	require.Equal(t, http.StatusOK, css.Code)
	require.Contains(t, css.Header().Get("Content-Type"), "text/css")
	require.Contains(t, css.Body.String(), "--accent: #2f6f66;")

	// The selection survives a new session over the same database.
	store := theme.NewStore(db.NewKVRepository(env.db))
	reloaded := theme.NewSession(store, theme.NewResolver(store), nil)
	require.Equal(t, theme.IDTeal, reloaded.Start(context.Background()).ID)
}

func TestSelectThemeRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "unknown id", body: `{"id":"neon"}`},
		{name: "missing id", body: `{}`},
		{name: "invalid json", body: `{"id":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, "/api/theme", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotEmpty(t, decode[errorResponse](t, rec).Error)
		})
	}

	current, _ := env.session.Current()
	require.Equal(t, theme.IDLight, current.ID)
}

func TestRandomizeTheme(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/theme/randomize", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[themeResponse](t, rec)
	require.Equal(t, theme.IDRandom, resp.ID)
	require.Regexp(t, `^#[0-9a-f]{6}$`, resp.Color)

	accent, ok := env.sheet.Get(theme.VarAccent)
	require.True(t, ok)
	require.Equal(t, resp.Color, accent)
}

func TestStyleSheetWithoutSharedTarget(t *testing.T) {
	store := theme.NewStore(nil)
	session := theme.NewSession(store, theme.NewResolver(store), nil)
	session.Start(context.Background())

	handler := NewServer(zerolog.Nop(), session).Handler()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/theme.css", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Body.String(), ":root {\n"))
	require.Contains(t, rec.Body.String(), "--accent: #c96a2b;")
}

func TestAccountRoutesNotImplemented(t *testing.T) {
	env := newTestEnv(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodPost, "/api/user/change-password"},
		{http.MethodDelete, "/api/user/delete"},
		{http.MethodPost, "/api/user/update"},
		{http.MethodGet, "/api/user/me"},
	} {
		rec := env.do(t, route.method, route.path, "")
		require.Equal(t, http.StatusNotImplemented, rec.Code, route.path)
	}
}

func TestMutationsAreRateLimited(t *testing.T) {
	rl := NewRateLimiter(WithRouteLimits(map[string]RateLimitConfig{
		RouteRandomizeTheme: {RequestsPerSecond: 0.1, BurstSize: 2},
	}))
	env := newTestEnv(t, WithRateLimiter(rl))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/theme/randomize", "").Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/theme/randomize", "").Code)
	require.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodPost, "/api/theme/randomize", "").Code)

	// Reads are not limited.
	for i := 0; i < 20; i++ {
		require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/theme", "").Code)
	}

	stats := decode[rateLimitResponse](t, env.do(t, http.MethodGet, "/api/ratelimit", ""))
	require.True(t, stats.Enabled)
	require.Nil(t, stats.Global)
	var randomize *RouteStats
	for i := range stats.Routes {
		if stats.Routes[i].Route == RouteRandomizeTheme {
			randomize = &stats.Routes[i]
		}
	}
	require.NotNil(t, randomize)
	require.EqualValues(t, 3, randomize.TotalRequests)
	require.EqualValues(t, 1, randomize.DeniedRequests)
}

func TestGlobalRateLimitStats(t *testing.T) {
	rl := NewRateLimiter(WithGlobalLimit(RateLimitConfig{RequestsPerSecond: 0.1, BurstSize: 3}))
	env := newTestEnv(t, WithRateLimiter(rl))

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/theme", "").Code)
	}

	// The stats request itself consumes from the exhausted global bucket.
	require.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodGet, "/api/ratelimit", "").Code)

	global := rl.GlobalStats()
	require.NotNil(t, global)
	require.EqualValues(t, 4, global.TotalRequests)
	require.EqualValues(t, 1, global.DeniedRequests)
}

func parseStyleSheet(css string) map[string]string {
	vars := make(map[string]string)
	for _, line := range strings.Split(css, "\n") {
		name, value, ok := strings.Cut(strings.TrimSpace(line), ": ")
		if ok {
			vars[name] = strings.TrimSuffix(value, ";")
		}
	}
	return vars
}

func TestStyleSheetIsConsistentDuringThemeChanges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 300; i++ {
			id := theme.IDTeal
			if i%2 == 0 {
				id = theme.IDDark
			}
			if _, err := env.session.Select(ctx, id); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			return
		default:
		}

		rec := env.do(t, http.MethodGet, "/theme.css", "")
		require.Equal(t, http.StatusOK, rec.Code)
		vars := parseStyleSheet(rec.Body.String())
		for _, v := range theme.Derive(vars[theme.VarAccent]).Vars() {
			require.Equal(t, v.Value, vars[v.Name], "%s mixed with accent %s", v.Name, vars[theme.VarAccent])
		}
	}
}
