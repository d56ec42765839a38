package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/identiq/identiq/internal/config"
	"github.com/identiq/identiq/internal/db"
	"github.com/identiq/identiq/internal/models"
	"github.com/identiq/identiq/internal/theme"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	configPath string
	dbPath     string
}

func setupCLI(t *testing.T) *cliEnv {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Global.DataDir = dir
	cfg.Database.Path = filepath.Join(dir, "identiq.db")

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.Write(path, cfg, false))

	t.Cleanup(resetCLIState)
	return &cliEnv{configPath: path, dbPath: cfg.Database.Path}
}

func resetCLIState() {
	cfgFile = ""
	logLevel = ""
	jsonOutput = false
	jsonlOutput = false
	nonInteractive = false
	noColor = false
	appConfig = nil
	configLoader = nil
	themeCSSSelector = ":root"
	themeCSSCopy = false
	eventsType = ""
	eventsSince = 0
	eventsLimit = 20
	uiBaseTheme = ""
}

// run executes the root command with args and returns combined output.
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetCLIState()
	noColor = true

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", e.configPath, "--no-color"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) openDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(db.Config{Path: e.dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestThemeShowDefaults(t *testing.T) {
	env := setupCLI(t)

	out, err := env.run(t, "theme", "show")
	require.NoError(t, err)
	require.Contains(t, out, "light")
	require.Contains(t, out, "#c96a2b")
	require.Contains(t, out, "OK resolved")
}

func TestThemeSetPersistsAcrossInvocations(t *testing.T) {
	env := setupCLI(t)

	_, err := env.run(t, "theme", "set", "teal")
	require.NoError(t, err)

	out, err := env.run(t, "--json", "theme", "show")
	require.NoError(t, err)

	var view themeView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Equal(t, theme.IDTeal, view.ID)
	require.Equal(t, "#2f6f66", view.Color)
	require.Equal(t, theme.LightForeground, view.Palette.Foreground)

	events, err := db.NewEventRepository(env.openDB(t)).ListByEntity(context.Background(), models.EntityTypeTheme, theme.IDTeal, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, models.EventTypeThemeSelected, events[0].Type)
}

func TestThemeSetUnknown(t *testing.T) {
	env := setupCLI(t)

	_, err := env.run(t, "theme", "set", "neon")
	var preflight *PreflightError
	require.ErrorAs(t, err, &preflight)
	require.Contains(t, preflight.Hint, "teal, light, dark, random")
}

func TestThemeRandomizeKeepsColorOnReload(t *testing.T) {
	env := setupCLI(t)

	out, err := env.run(t, "--json", "theme", "randomize")
	require.NoError(t, err)
	var randomized themeView
	require.NoError(t, json.Unmarshal([]byte(out), &randomized))
	require.Equal(t, theme.IDRandom, randomized.ID)

	out, err = env.run(t, "--json", "theme", "show")
	require.NoError(t, err)
	var shown themeView
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	require.Equal(t, randomized.Color, shown.Color)
}

func TestThemeList(t *testing.T) {
	env := setupCLI(t)

	out, err := env.run(t, "theme", "list")
	require.NoError(t, err)
	require.Contains(t, out, "SELECTED")
	require.Contains(t, out, "(generated)")
	for _, id := range theme.IDs() {
		require.Contains(t, out, id)
	}

	out, err = env.run(t, "--json", "theme", "list")
	require.NoError(t, err)
	var entries []theme.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, len(theme.Themes))
	require.True(t, entries[1].Selected)
}

func TestThemeCSS(t *testing.T) {
	env := setupCLI(t)

	out, err := env.run(t, "theme", "css", "--selector", ".dashboard")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, ".dashboard {\n"), out)
	require.Contains(t, out, "  --accent: #c96a2b;\n")
	require.Contains(t, out, "  --accent-rgb: 201, 106, 43;\n")
}

func TestUsersListAndDelete(t *testing.T) {
	env := setupCLI(t)

	out, err := env.run(t, "users", "list")
	require.NoError(t, err)
	require.Contains(t, out, "Alice Johnson")
	require.Contains(t, out, "u_1005")

	out, err = env.run(t, "users", "delete", "u_1001")
	require.NoError(t, err)
	require.Contains(t, out, "Deleted user Alice Johnson (u_1001)")

	out, err = env.run(t, "--json", "users", "list")
	require.NoError(t, err)
	var users []*models.User
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	require.Len(t, users, 4)

	events, err := db.NewEventRepository(env.openDB(t)).ListByEntity(context.Background(), models.EntityTypeUser, "u_1001", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, models.EventTypeUserDeleted, events[0].Type)
}

func TestUsersDeleteUnknown(t *testing.T) {
	env := setupCLI(t)

	_, err := env.run(t, "users", "delete", "u_404")
	var preflight *PreflightError
	require.ErrorAs(t, err, &preflight)
	require.Contains(t, preflight.Message, "u_404")
}

func TestUsersCountUsesLocalTable(t *testing.T) {
	env := setupCLI(t)

	out, err := env.run(t, "users", "count")
	require.NoError(t, err)
	require.Equal(t, "5\n", out)

	out, err = env.run(t, "--json", "users", "count")
	require.NoError(t, err)
	require.JSONEq(t, `{"count":5}`, out)
}

func TestUsersDistribution(t *testing.T) {
	env := setupCLI(t)

	out, err := env.run(t, "users", "distribution")
	require.NoError(t, err)
	require.Contains(t, out, "Sunset")
	require.Contains(t, out, "40%")
	require.Contains(t, out, "20%")
}

func TestUIRequiresTerminal(t *testing.T) {
	env := setupCLI(t)

	_, err := env.run(t, "--non-interactive", "ui")
	var preflight *PreflightError
	require.ErrorAs(t, err, &preflight)
	require.Equal(t, "identiq theme show", preflight.NextStep)
}

func TestInvalidConfigIsPreflightError(t *testing.T) {
	env := setupCLI(t)
	require.NoError(t, os.WriteFile(env.configPath, []byte("dashboard:\n  default_theme: neon\n"), 0o644))

	_, err := env.run(t, "theme", "show")
	var preflight *PreflightError
	require.ErrorAs(t, err, &preflight)
	require.Equal(t, "identiq init --force", preflight.NextStep)
}

func TestWriteOutputJSONL(t *testing.T) {
	t.Cleanup(resetCLIState)
	jsonlOutput = true

	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, []string{"a", "b"}))
	require.Equal(t, "\"a\"\n\"b\"\n", buf.String())
}

func TestPreflightErrorFormatting(t *testing.T) {
	err := &PreflightError{Message: "boom", Hint: "try again", NextStep: "identiq init"}
	require.Equal(t, "boom\n  hint: try again\n  next: identiq init", err.Error())
	require.Equal(t, "boom", (&PreflightError{Message: "boom"}).Error())
}

func TestThemePreview(t *testing.T) {
	env := setupCLI(t)

	out, err := env.run(t, "--json", "theme", "preview", "f5d76e")
	require.NoError(t, err)
	var palette theme.Palette
	require.NoError(t, json.Unmarshal([]byte(out), &palette))
	require.Equal(t, "#f5d76e", palette.Accent)
	require.Equal(t, theme.DarkForeground, palette.Foreground)
	require.Equal(t, "#d8bd61", palette.HeaderBG)

	_, err = env.run(t, "theme", "preview", "#zzzzzz")
	var preflight *PreflightError
	require.ErrorAs(t, err, &preflight)
	require.Contains(t, preflight.Message, "invalid hex color")

	// Previewing must not change the active theme.
	out, err = env.run(t, "--json", "theme", "show")
	require.NoError(t, err)
	var view themeView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Equal(t, theme.IDLight, view.ID)
}

func TestEventsListsRecentChanges(t *testing.T) {
	env := setupCLI(t)

	out, err := env.run(t, "events")
	require.NoError(t, err)
	require.Contains(t, out, "No events recorded.")

	_, err = env.run(t, "theme", "set", "dark")
	require.NoError(t, err)
	_, err = env.run(t, "users", "delete", "u_1002")
	require.NoError(t, err)

	out, err = env.run(t, "--json", "events", "--type", "user.deleted")
	require.NoError(t, err)
	var recorded []*models.Event
	require.NoError(t, json.Unmarshal([]byte(out), &recorded))
	require.Len(t, recorded, 1)
	require.Equal(t, "u_1002", recorded[0].EntityID)

	out, err = env.run(t, "events")
	require.NoError(t, err)
	require.Contains(t, out, "theme.selected")
	require.Contains(t, out, "user/u_1002")
}
