package logging

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatter_Format(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 123_000_000, time.UTC)

	line := Formatter{}.Format(Entry{
		Time:       ts,
		Level:      slog.LevelError,
		Message:    "bag validation failed",
		Logger:     "validator",
		Space:      "PROD",
		Entrypoint: "ingest",
	})

	assert.Equal(t, "2024-03-05 14:07:09,123 - ingest - PROD - validator - ERROR - bag validation failed", line)
}

func TestFormatter_DefaultsAndAttrs(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

	line := Formatter{TimeFormat: time.RFC3339}.Format(Entry{
		Time:    ts,
		Level:   slog.LevelInfo,
		Message: "copied",
		Attrs: []slog.Attr{
			slog.Int("files", 3),
			slog.String("path", "/data/my bag"),
			slog.Group("req", slog.String("id", "r1")),
		},
	})

	assert.Equal(t, `2024-03-05T14:07:09Z -  -  - root - INFO - copied files=3 path="/data/my bag" req.id=r1`, line)
}

func TestLevelName(t *testing.T) {
	for level, want := range map[slog.Level]string{
		slog.LevelDebug:     "DEBUG",
		slog.LevelInfo:      "INFO",
		slog.LevelInfo + 2:  "INFO",
		slog.LevelWarn:      "WARNING",
		slog.LevelError:     "ERROR",
		LevelCritical:       "CRITICAL",
		LevelCritical + 4:   "CRITICAL",
		slog.LevelDebug - 4: "DEBUG",
	} {
		assert.Equal(t, want, LevelName(level), level.String())
	}

	line := Formatter{TimeFormat: time.RFC3339}.Format(Entry{
		Time:    time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC),
		Level:   slog.LevelWarn,
		Message: "disk almost full",
	})
	assert.Equal(t, "2024-03-05T14:07:09Z -  -  - root - WARNING - disk almost full", line)
}
