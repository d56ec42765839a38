// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config controls log level and output format.
type Config struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string

	// Format is "console" or "json". Defaults to console.
	Format string
}

// output forwards to the writer chosen by the latest Init. Loggers derived earlier,
// including component loggers held by long-lived services, follow reloads through it.
type output struct {
	mu sync.RWMutex
	w  io.Writer
}

func (o *output) Write(p []byte) (int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.w.Write(p)
}

func (o *output) set(w io.Writer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.w = w
}

var (
	sink = &output{w: os.Stderr}
	base = zerolog.New(sink).With().Timestamp().Logger()
)

// Init configures the base logger. Output goes to stderr.
func Init(cfg Config) {
	InitWithWriter(cfg, os.Stderr)
}

// InitWithWriter configures the base logger to write to w. It may be called again at
// runtime; existing loggers pick up the new level, format and writer.
func InitWithWriter(cfg Config, w io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	zerolog.SetGlobalLevel(level)
	sink.set(out)
}

// Logger returns the base logger.
func Logger() zerolog.Logger {
	return base
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}
