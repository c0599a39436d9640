package page2pdf

import (
	"io"
	"log/slog"
)

// NewLogger returns a text logger writing to w.
// printLogs enables progress logs (Info and above); printErrors alone keeps
// warnings and errors. With neither, everything is discarded.
func NewLogger(w io.Writer, printLogs, printErrors bool) *slog.Logger {
	var level slog.Level
	switch {
	case printLogs:
		level = slog.LevelInfo
	case printErrors:
		level = slog.LevelWarn
	default:
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
