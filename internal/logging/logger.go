package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var stderr io.Writer = os.Stderr

// Setup installs a JSON logger on stdout as the process default.
func Setup() {
	slog.SetDefault(slog.New(NewJSONHandler(os.Stdout)))
}

// NewJSONHandler returns the stdout JSON handler. LOG_LEVEL selects the
// minimum level (debug, info, warn, error); info by default.
func NewJSONHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelFromEnv()})
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
