package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

// Statusf prints a status message to stderr unless quiet mode is set.
func (cc *CLIContext) Statusf(format string, args ...any) {
	if !cc.Quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// isTerminal reports whether f is attached to an interactive terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// formatDuration renders a duration with sub-second noise trimmed off.
func formatDuration(d time.Duration) string {
	if d >= time.Second {
		return d.Round(100 * time.Millisecond).String()
	}

	return d.Round(time.Millisecond).String()
}

// formatUnix renders a Unix timestamp for display, with 0 as a dash.
func formatUnix(ts int64) string {
	if ts == 0 {
		return "-"
	}

	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05")
}
