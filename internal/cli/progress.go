package cli

import (
	"fmt"
	"io"
	"os"
	"time"
)

// progressStep prints "label... done (12ms)" around a startup step.
type progressStep struct {
	out     io.Writer
	started time.Time
}

func startProgress(out io.Writer, label string) *progressStep {
	if !progressEnabled() {
		return nil
	}
	fmt.Fprintf(out, "%s... ", label)
	return &progressStep{out: out, started: time.Now()}
}

func (p *progressStep) Done() {
	if p == nil {
		return
	}
	fmt.Fprintf(p.out, "%s (%s)\n", colorize("done", colorGreen), formatDuration(time.Since(p.started)))
}

func (p *progressStep) Fail(err error) {
	if p == nil {
		return
	}
	if err != nil {
		fmt.Fprintf(p.out, "%s: %v\n", colorize("failed", colorRed), err)
		return
	}
	fmt.Fprintln(p.out, colorize("failed", colorRed))
}

func progressEnabled() bool {
	if IsJSONOutput() || IsJSONLOutput() || noProgress {
		return false
	}
	for _, name := range []string{"IDENTIQ_NO_PROGRESS", "NO_PROGRESS"} {
		if _, ok := os.LookupEnv(name); ok {
			return false
		}
	}
	return true
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.String()
	case d < time.Second:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
