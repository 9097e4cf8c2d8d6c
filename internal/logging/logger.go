package logging

import (
	"errors"
	"log/slog"
	"sync"
)

// Logger is the process-scoped logger. It wraps slog.Logger and owns the
// resources behind its handlers (sink worker, rotation schedule, files),
// which are released by Close.
type Logger struct {
	*slog.Logger
	res *resources
}

type resources struct {
	once    sync.Once
	closers []func() error
	err     error
}

// NewLogger builds a Logger on top of handler. Closers run in the given
// order when the logger is closed.
func NewLogger(handler slog.Handler, closers ...func() error) *Logger {
	return &Logger{
		Logger: slog.New(handler),
		res:    &resources{closers: closers},
	}
}

// With returns a Logger sharing the same resources with attrs attached.
func (l *Logger) With(attrs ...slog.Attr) *Logger {
	return &Logger{
		Logger: slog.New(l.Logger.Handler().WithAttrs(attrs)),
		res:    l.res,
	}
}

// Named returns a child logger whose records carry the given logger name.
func (l *Logger) Named(name string) *Logger {
	return l.With(slog.String(LoggerKey, name))
}

// Close releases every resource exactly once. Later calls return the
// result of the first one.
func (l *Logger) Close() error {
	l.res.once.Do(func() {
		var errs []error
		for _, c := range l.res.closers {
			if err := c(); err != nil {
				errs = append(errs, err)
			}
		}
		l.res.err = errors.Join(errs...)
	})
	return l.res.err
}
