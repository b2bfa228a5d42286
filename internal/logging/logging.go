// Package logging builds the application's slog logger. With a log
// directory configured it writes JSON lines to a size-rotated file;
// otherwise it writes text to stderr.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger at the given level. dir may be empty for stderr
// output. Unknown levels fall back to info with a note on stderr.
func New(level, dir string) *slog.Logger {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		fmt.Fprintf(os.Stderr, "%s: invalid log level, using info\n", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if dir == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "atcmapd.log"),
		MaxSize:    32, // MB
		MaxBackups: 2,
		Compress:   true,
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
