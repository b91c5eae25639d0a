package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a JSON stdout logger as the slog default.
// Debug output is enabled outside production.
func Setup(production bool) slog.Handler {
	h := NewJSONHandler(os.Stdout, production)
	slog.SetDefault(slog.New(h))
	return h
}

func NewJSONHandler(w io.Writer, production bool) slog.Handler {
	level := slog.LevelDebug
	if production {
		level = slog.LevelInfo
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}
