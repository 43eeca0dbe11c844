package initializer

import (
	"log/slog"
	"os"

	"github.com/amirasaad/pixflow/pkg/config"
	"github.com/charmbracelet/log"
)

// setupLogger builds the application logger and installs it as the slog
// default.
func setupLogger(cfg *config.Log) *slog.Logger {
	formatter := log.TextFormatter
	if cfg.Format == "json" {
		formatter = log.JSONFormatter
	}

	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportTimestamp: true,
		Level:           log.Level(cfg.Level),
		Formatter:       formatter,
	})

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
