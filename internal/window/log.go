package window

import (
	"os"

	"github.com/charmbracelet/log"
)

// Package-level logger
var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "window",
	})
}

// SetLogLevel sets the logging level for the window package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}
