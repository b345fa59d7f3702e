// Package cli implements the plantuml command-line interface.
//
// The commands wrap the client package: generate renders diagram files
// through a PlantUML server, url and encode expose the text encoding, and
// serve runs a small HTTP front end. Settings come from the config package
// and can be overridden per command with flags.
//
// # Commands
//
// The main commands are:
//   - generate: Render diagram files to images, saving server error pages
//   - url: Print the server URL for diagram files or text
//   - encode, decode: Convert between diagram text and URL tokens
//   - serve: Run the HTTP rendering API
//   - cache: Manage the rendered image cache
//   - config: Show the effective configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// traces HTTP requests and cache activity through observability hooks.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Generated 3 diagrams (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
