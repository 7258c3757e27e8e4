// Package logging builds the structured loggers shared by the server and
// the CLI.
package logging

import (
	"fmt"
	"io"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Supported output formats
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

// New creates a logger writing to w at the given level and format
func New(w io.Writer, level, format string) (*charmlog.Logger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var formatter charmlog.Formatter
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		formatter = charmlog.TextFormatter
	case FormatJSON:
		formatter = charmlog.JSONFormatter
	case FormatLogfmt:
		formatter = charmlog.LogfmtFormatter
	default:
		return nil, fmt.Errorf("invalid log format %q: must be text, json or logfmt", format)
	}

	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           lvl,
		Formatter:       formatter,
		ReportTimestamp: formatter != charmlog.TextFormatter || lvl <= charmlog.DebugLevel,
	}), nil
}

// Discard returns a logger that drops everything
func Discard() *charmlog.Logger {
	return charmlog.NewWithOptions(io.Discard, charmlog.Options{Level: charmlog.FatalLevel})
}
