package settings

import (
	"os"

	"github.com/charmbracelet/log"
)

// Package-level logger
var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "settings",
	})
}

// SetLogLevel sets the logging level for the settings package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}
