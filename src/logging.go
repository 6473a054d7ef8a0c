package lfdemod

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger builds the structured logger used for decoder diagnostics.
func NewLogger(w io.Writer, cfg LogConfig, prefix string) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	var level = log.InfoLevel

	if cfg.Level != "" {
		var parsed, err = log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, demodErr("logger", ErrInvalidArgument, "log level %q", cfg.Level)
		}

		level = parsed
	}

	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportTimestamp: cfg.TimestampFormat != "",
		TimeFormat:      "15:04:05.000",
	}), nil
}

// discardLogger is what a DecodeContext gets when the caller does not supply one.
func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
