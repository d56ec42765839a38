package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestComponentJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "debug", Format: "json"}, &buf)
	t.Cleanup(func() { InitWithWriter(Config{}, &bytes.Buffer{}) })

	Component("theme").Info().Str("id", "teal").Msg("theme applied")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["component"] != "theme" {
		t.Errorf("component = %v", entry["component"])
	}
	if entry["id"] != "teal" || entry["message"] != "theme applied" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "warn", Format: "json"}, &buf)
	t.Cleanup(func() { InitWithWriter(Config{}, &bytes.Buffer{}) })

	Component("db").Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %q", buf.String())
	}
	Component("db").Warn().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected warn output, got %q", buf.String())
	}
}

func TestInvalidLevelDefaultsToInfo(t *testing.T) {
	InitWithWriter(Config{Level: "loud"}, &bytes.Buffer{})
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("expected info level, got %s", zerolog.GlobalLevel())
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Format: "console"}, &buf)
	t.Cleanup(func() { InitWithWriter(Config{}, &bytes.Buffer{}) })

	Component("cli").Info().Msg("ready")
	if strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("console output should not be JSON: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "ready") {
		t.Fatalf("missing message: %q", buf.String())
	}
}

func TestReinitUpdatesExistingLoggers(t *testing.T) {
	var console bytes.Buffer
	InitWithWriter(Config{Level: "info", Format: "console"}, &console)
	t.Cleanup(func() { InitWithWriter(Config{}, &bytes.Buffer{}) })

	logger := Component("daemon")

	var reloaded bytes.Buffer
	InitWithWriter(Config{Level: "debug", Format: "json"}, &reloaded)
	logger.Debug().Msg("after reload")

	if console.Len() != 0 {
		t.Fatalf("old writer should not receive output: %q", console.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(reloaded.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output after reload, got %q: %v", reloaded.String(), err)
	}
	if entry["component"] != "daemon" || entry["message"] != "after reload" {
		t.Errorf("unexpected entry: %v", entry)
	}
}
