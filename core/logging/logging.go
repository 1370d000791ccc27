// Package logging builds the slog loggers shared by the CLI and libraries.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// DebugEnv enables debug logging everywhere when set to any non-empty value.
const DebugEnv = "COBOLSCOPE_DEBUG"

// New returns a text logger without timestamps or level prefixes, which keeps
// debug traces readable next to CLI output.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// FromEnv returns a stderr debug logger when envVar or DebugEnv is set, and
// a discarding logger otherwise.
func FromEnv(envVar string) *slog.Logger {
	if os.Getenv(envVar) != "" || os.Getenv(DebugEnv) != "" {
		return New(os.Stderr, slog.LevelDebug)
	}
	return Discard()
}
