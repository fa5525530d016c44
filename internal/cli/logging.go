package cli

import (
	"io"
	"log/slog"
)

// newLogger builds the text logger commands pass to the pipeline. Debug
// records are kept only in verbose mode.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}
