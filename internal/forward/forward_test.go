package forward

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chichichkin/IngestLogger/internal/logging"
	"github.com/Chichichkin/IngestLogger/internal/testutils"
)

func newRecordingLogger() (*logging.Logger, *testutils.LineRecorder) {
	recorder := &testutils.LineRecorder{}
	handler := logging.NewTagHandler(
		logging.Tags{Space: "DEV", Entrypoint: "forward"},
		logging.NewLineHandler(recorder, &logging.HandlerOptions{Level: slog.LevelDebug}),
	)
	return logging.NewLogger(handler), recorder
}

func forwardedLines(recorder *testutils.LineRecorder, source string) []string {
	var lines []string
	for _, line := range recorder.GetLines() {
		if strings.Contains(line, " - "+source+" - ") {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestService_FollowsAppendedLines(t *testing.T) {
	file := testutils.CreateTempLogFile(t, "tailme.log", "start\n")
	logger, recorder := newRecordingLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s := NewService(ctx, Config{Paths: []string{file}, Poll: true, Level: slog.LevelInfo}, logger)
	require.NoError(t, s.Start())

	time.Sleep(200 * time.Millisecond)

	f, err := os.OpenFile(file, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, _ = f.WriteString("l1\n")
	_, _ = f.WriteString("l2\n")
	_ = f.Close()

	assert.Eventually(t, func() bool {
		return len(forwardedLines(recorder, "tailme.log")) >= 2
	}, 3*time.Second, 50*time.Millisecond)

	s.Stop()

	lines := forwardedLines(recorder, "tailme.log")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], " - forward - DEV - tailme.log - INFO - l1")
	assert.Contains(t, lines[1], " - forward - DEV - tailme.log - INFO - l2")

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.FilesFollowed)
	assert.Equal(t, int64(2), stats.LinesForwarded)
}

func TestService_FromStartAndIdleTimeout(t *testing.T) {
	file := testutils.CreateTempLogFile(t, "replay.log", "one\ntwo\n")
	logger, recorder := newRecordingLogger()

	s := NewService(context.Background(), Config{
		Paths:           []string{file},
		FromStart:       true,
		Poll:            true,
		Level:           slog.LevelWarn,
		FileIdleTimeout: 300 * time.Millisecond,
	}, logger)
	require.NoError(t, s.Start())

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("follower did not stop after idle timeout")
	}

	lines := forwardedLines(recorder, "replay.log")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "WARNING - one")
	assert.Contains(t, lines[1], "WARNING - two")
}

func TestService_NoMatchingFiles(t *testing.T) {
	logger, _ := newRecordingLogger()
	s := NewService(context.Background(), Config{
		Paths: []string{filepath.Join(t.TempDir(), "*.log")},
	}, logger)

	assert.Error(t, s.Start())
}

func TestDiscoverFiles_GlobsAndDeduplicates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.log", "b.log", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d.log"), 0755))

	logger, _ := newRecordingLogger()
	s := NewService(context.Background(), Config{
		Paths: []string{filepath.Join(dir, "*.log"), filepath.Join(dir, "a.log")},
	}, logger)

	files, err := s.discoverFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")}, files)

	s.config.Paths = []string{"[invalid"}
	_, err = s.discoverFiles()
	assert.Error(t, err)
}
