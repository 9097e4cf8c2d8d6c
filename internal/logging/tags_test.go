package logging

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chichichkin/IngestLogger/internal/testutils"
)

func recordAttrs(r slog.Record) map[string][]string {
	attrs := make(map[string][]string)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = append(attrs[a.Key], a.Value.String())
		return true
	})
	return attrs
}

func TestTags_Tag(t *testing.T) {
	tags := Tags{Space: "PROD", Entrypoint: "ingest.py"}
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	r.AddAttrs(slog.String("bag", "b-1"))

	tagged := tags.Tag(r)

	attrs := recordAttrs(tagged)
	assert.Equal(t, []string{"PROD"}, attrs[SpaceKey])
	assert.Equal(t, []string{"ingest.py"}, attrs[EntrypointKey])
	assert.Equal(t, []string{"b-1"}, attrs["bag"])
	assert.Equal(t, "hello", tagged.Message)
	assert.Equal(t, r.Time, tagged.Time)
	assert.Equal(t, slog.LevelInfo, tagged.Level)
}

func TestTags_TagIsIdempotent(t *testing.T) {
	tags := Tags{Space: "DEV", Entrypoint: "NULL"}
	r := slog.NewRecord(time.Now(), slog.LevelWarn, "msg", 0)

	once := recordAttrs(tags.Tag(r))
	twice := recordAttrs(tags.Tag(tags.Tag(r)))

	assert.Equal(t, once, twice)
	assert.Len(t, twice[SpaceKey], 1)
	assert.Len(t, twice[EntrypointKey], 1)
}

func TestTags_TagOverwritesExistingValues(t *testing.T) {
	tags := Tags{Space: "QA", Entrypoint: "worker"}
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
	r.AddAttrs(slog.String(SpaceKey, "spoofed"))

	attrs := recordAttrs(tags.Tag(r))
	assert.Equal(t, []string{"QA"}, attrs[SpaceKey])
}

func TestTagHandler_NeverSuppresses(t *testing.T) {
	recorder := &testutils.LineRecorder{}
	inner := NewLineHandler(recorder, &HandlerOptions{Level: slog.LevelDebug})
	h := NewTagHandler(Tags{Space: "DEV", Entrypoint: "cli"}, inner)

	logger := slog.New(h)
	logger.Debug("one")
	logger.Info("two")

	lines := recorder.GetLines()
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, " - cli - DEV - root - ")
	}
	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
}
