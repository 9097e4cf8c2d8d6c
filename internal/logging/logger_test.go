package logging

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chichichkin/IngestLogger/internal/testutils"
)

func TestLogger_NamedAndTagged(t *testing.T) {
	recorder := &testutils.LineRecorder{}
	handler := NewTagHandler(Tags{Space: "DEV", Entrypoint: "NULL"}, NewLineHandler(recorder, nil))
	l := NewLogger(handler)

	l.Named("bagit").Info("checksum ok")

	lines := recorder.GetLines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], " - NULL - DEV - bagit - INFO - checksum ok")
}

func TestLogger_CloseRunsClosersOnce(t *testing.T) {
	var order []string
	l := NewLogger(slog.NewTextHandler(nil, nil),
		func() error { order = append(order, "sink"); return nil },
		func() error { order = append(order, "file"); return errors.New("close failed") },
	)
	child := l.With(slog.String("k", "v"))

	err := child.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close failed")

	assert.Equal(t, err, l.Close())
	assert.Equal(t, []string{"sink", "file"}, order)
}
