package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a JSON logger writing to w. Every record carries the service
// name and a UTC timestamp.
func New(w io.Writer, level slog.Level, service string) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.TimeValue(a.Value.Time().UTC())
			}

			return a
		},
	})

	return slog.New(h).With(slog.String("service", service))
}

// SetupJSON installs a stdout JSON logger for service as slog's default.
func SetupJSON(level slog.Level, service string) *slog.Logger {
	logger := New(os.Stdout, level, service)
	slog.SetDefault(logger)

	return logger
}
