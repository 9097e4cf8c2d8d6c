package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
)

type HandlerOptions struct {
	// Level is the minimum level handled. Nil means slog.LevelInfo.
	Level     slog.Leveler
	Formatter Formatter
	// ExcludeLoggers lists logger names whose records this handler ignores.
	ExcludeLoggers []string
}

// LineHandler formats records into single lines and hands them to a LineSink.
type LineHandler struct {
	sink      LineSink
	level     slog.Leveler
	formatter Formatter
	exclude   map[string]struct{}

	prefix     string
	attrs      []slog.Attr
	logger     string
	space      string
	entrypoint string
}

func NewLineHandler(sink LineSink, opts *HandlerOptions) *LineHandler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	h := &LineHandler{
		sink:      sink,
		level:     opts.Level,
		formatter: opts.Formatter,
	}
	if h.level == nil {
		h.level = slog.LevelInfo
	}
	if len(opts.ExcludeLoggers) > 0 {
		h.exclude = make(map[string]struct{}, len(opts.ExcludeLoggers))
		for _, name := range opts.ExcludeLoggers {
			h.exclude[name] = struct{}{}
		}
	}
	return h
}

func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	entry := Entry{
		Time:       r.Time,
		Level:      r.Level,
		Message:    r.Message,
		Logger:     h.logger,
		Space:      h.space,
		Entrypoint: h.entrypoint,
		Attrs:      slices.Clone(h.attrs),
	}
	r.Attrs(func(a slog.Attr) bool {
		if !h.absorb(&entry.Logger, &entry.Space, &entry.Entrypoint, a) {
			entry.Attrs = append(entry.Attrs, h.scoped(a))
		}
		return true
	})

	if _, skip := h.exclude[entry.Logger]; skip {
		return nil
	}
	h.sink.WriteLine(h.formatter.Format(entry))
	return nil
}

func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := h.clone()
	for _, a := range attrs {
		if !c.absorb(&c.logger, &c.space, &c.entrypoint, a) {
			c.attrs = append(c.attrs, c.scoped(a))
		}
	}
	return c
}

func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	if c.prefix == "" {
		c.prefix = name
	} else {
		c.prefix = c.prefix + "." + name
	}
	return c
}

// absorb moves the well-known string attributes into their dedicated
// columns. It reports whether a was consumed.
func (h *LineHandler) absorb(logger, space, entrypoint *string, a slog.Attr) bool {
	var dst *string
	switch a.Key {
	case LoggerKey:
		dst = logger
	case SpaceKey:
		dst = space
	case EntrypointKey:
		dst = entrypoint
	default:
		return false
	}
	*dst = a.Value.Resolve().String()
	return true
}

func (h *LineHandler) scoped(a slog.Attr) slog.Attr {
	if h.prefix == "" {
		return a
	}
	return slog.Attr{Key: h.prefix, Value: slog.GroupValue(a)}
}

func (h *LineHandler) clone() *LineHandler {
	c := *h
	c.attrs = slices.Clone(h.attrs)
	return &c
}

// FanoutHandler passes each record to every child handler that accepts its level.
type FanoutHandler struct {
	handlers []slog.Handler
}

func NewFanoutHandler(handlers ...slog.Handler) *FanoutHandler {
	return &FanoutHandler{handlers: handlers}
}

func (f *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &FanoutHandler{handlers: handlers}
}

func (f *FanoutHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &FanoutHandler{handlers: handlers}
}

// WriterSink writes each line to an io.Writer followed by a newline.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) WriteLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.w, line+"\n")
}
