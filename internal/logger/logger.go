package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the process-wide structured logger. It is usable before Init so
// packages exercised from tests never log through a nil handler.
var Logger = slog.Default()

// Init installs a text handler on stdout. Debug output is enabled by the
// debug argument or by DEBUG=true in the environment.
func Init(debug bool) {
	InitWriter(os.Stdout, debug)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug || os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	Logger = slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(Logger)
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}
