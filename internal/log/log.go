// Package log configures the application logger. Log output goes to a
// rotating file in the data directory so terminal output stays clean for
// pterm.
package log

import (
	"log/slog"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 5
	maxBackups = 3
)

// Init routes the default slog logger to a rotating JSON log file at
// path and returns it.
func Init(path string) *slog.Logger {
	writer := &lumberjack.Logger{
		Filename:   filepath.Clean(path),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}

	logger := slog.New(slog.NewJSONHandler(writer, nil))

	slog.SetDefault(logger)

	return logger
}
