// Package logging builds the console logger shared by every command.
package logging

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Prefix is printed in front of every log line.
const Prefix = "sas7bdat-converter"

// New returns a logger writing to w at the named level
// ("debug", "info", "warn" or "error").
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level %q: %w", level, err)
	}

	logger := log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           lvl,
		ReportTimestamp: false,
	})
	return logger, nil
}

// Discard returns a logger that drops everything. Tests use it when they do
// not assert on log output.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
