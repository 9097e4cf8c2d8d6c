package logging

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTimeFormat = "2006-01-02 15:04:05,000"
	rootLoggerName    = "root"
)

// LevelCritical is the severity above slog.LevelError.
const LevelCritical = slog.Level(12)

// LevelName returns the severity name printed in a line: DEBUG, INFO,
// WARNING, ERROR or CRITICAL.
func LevelName(l slog.Level) string {
	switch {
	case l >= LevelCritical:
		return "CRITICAL"
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

// Entry is a record flattened for formatting.
type Entry struct {
	Time       time.Time
	Level      slog.Level
	Message    string
	Logger     string
	Space      string
	Entrypoint string
	Attrs      []slog.Attr
}

// Formatter renders entries as
//
//	<time> - <entrypoint> - <space> - <logger> - <LEVEL> - <message> [key=value ...]
type Formatter struct {
	TimeFormat string
}

func (f Formatter) Format(e Entry) string {
	layout := f.TimeFormat
	if layout == "" {
		layout = DefaultTimeFormat
	}
	ts := e.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	name := e.Logger
	if name == "" {
		name = rootLoggerName
	}

	var b strings.Builder
	b.WriteString(ts.Format(layout))
	for _, part := range []string{e.Entrypoint, e.Space, name, LevelName(e.Level), e.Message} {
		b.WriteString(" - ")
		b.WriteString(part)
	}
	for _, a := range e.Attrs {
		writeAttr(&b, "", a)
	}
	return b.String()
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, key, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(quoteIfNeeded(a.Value.String()))
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " =\"\n\t") {
		return strconv.Quote(s)
	}
	return s
}
