// Package rotate provides the log file writer: lumberjack rotates on size and
// keeps a bounded number of backups, and a cron schedule forces a rotation
// every configured number of days.
package rotate

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultMaxSizeMB = 100

type Config struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	// Interval forces a rotation on a fixed cadence. Zero disables it.
	Interval time.Duration
	// OnError receives failures of scheduled rotations.
	OnError func(error)
}

// Writer is an io.WriteCloser over the current log file.
type Writer struct {
	file    *lumberjack.Logger
	cron    *cron.Cron
	onError func(error)

	// mu serialises scheduled rotations with Close; cron.Stop does not
	// wait for a running job.
	mu     sync.Mutex
	closed bool
}

var ErrClosed = errors.New("log file writer is closed")

func New(cfg Config) (*Writer, error) {
	if cfg.Filename == "" {
		return nil, errors.New("log file name is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = defaultMaxSizeMB
	}

	w := &Writer{
		file: &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
		},
		onError: cfg.OnError,
	}
	if w.onError == nil {
		w.onError = func(err error) {
			slog.Error("scheduled log rotation failed", slog.String("file", cfg.Filename), slog.Any("error", err))
		}
	}

	if cfg.Interval > 0 {
		w.cron = cron.New()
		w.cron.Schedule(cron.Every(cfg.Interval), cron.FuncJob(w.scheduledRotate))
		w.cron.Start()
	}
	return w, nil
}

// Days converts a rotation cadence in days to an interval.
func Days(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * 24 * time.Hour
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, ErrClosed
	}
	return w.file.Write(p)
}

// Rotate closes the current file, renames it with a timestamp suffix and
// opens a fresh one.
func (w *Writer) Rotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	return errors.Wrap(w.file.Rotate(), "failed to rotate log file")
}

// Close stops the schedule and closes the file. A rotation that fires
// afterwards is a no-op.
func (w *Writer) Close() error {
	if w.cron != nil {
		w.cron.Stop()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return errors.Wrap(w.file.Close(), "failed to close log file")
}

func (w *Writer) scheduledRotate() {
	if err := w.Rotate(); err != nil && !errors.Is(err, ErrClosed) {
		w.onError(err)
	}
}
