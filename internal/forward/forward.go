// Package forward follows existing log files and relays every new line
// through the process logger, so output of tools that cannot link the logger
// still reaches the console, the rotated file and the notification channel.
package forward

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hpcloud/tail"
	"github.com/pkg/errors"

	"github.com/Chichichkin/IngestLogger/internal/logging"
)

const idleCheckInterval = 250 * time.Millisecond

type Config struct {
	// Paths are file names or glob patterns.
	Paths []string
	// FromStart replays existing content instead of starting at the end.
	FromStart bool
	Poll      bool
	Level     slog.Level
	// If > 0, stop following a file after this period without new lines
	FileIdleTimeout time.Duration
}

type Stats struct {
	FilesFollowed  int64
	FilesFailed    int64
	LinesForwarded int64
}

type Service struct {
	config Config
	logger *logging.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	filesFollowed  atomic.Int64
	filesFailed    atomic.Int64
	linesForwarded atomic.Int64
}

func NewService(ctx context.Context, config Config, logger *logging.Logger) *Service {
	nCtx, cancel := context.WithCancel(ctx)
	return &Service{
		config: config,
		logger: logger,
		ctx:    nCtx,
		cancel: cancel,
	}
}

// Start resolves the configured paths and follows each file in its own
// goroutine.
func (s *Service) Start() error {
	files, err := s.discoverFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.Errorf("no files match %v", s.config.Paths)
	}

	for _, file := range files {
		s.wg.Add(1)
		go s.follow(file)
	}
	s.logger.Info("forwarding log files", slog.Int("files", len(files)))
	return nil
}

// Wait blocks until every follower has exited.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Service) Stats() Stats {
	return Stats{
		FilesFollowed:  s.filesFollowed.Load(),
		FilesFailed:    s.filesFailed.Load(),
		LinesForwarded: s.linesForwarded.Load(),
	}
}

func (s *Service) follow(filePath string) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("file follower panicked", slog.String("file", filePath), slog.Any("panic", r))
			s.filesFailed.Add(1)
		}
	}()

	whence := io.SeekEnd
	if s.config.FromStart {
		whence = io.SeekStart
	}
	t, err := tail.TailFile(filePath, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Poll:     s.config.Poll,
		Location: &tail.SeekInfo{Offset: 0, Whence: whence},
		Logger:   tail.DiscardingLogger,
	})
	if err != nil {
		s.logger.Error("failed to tail file", slog.String("file", filePath), slog.Any("error", err))
		s.filesFailed.Add(1)
		return
	}
	defer t.Cleanup()
	defer func() { _ = t.Stop() }()

	s.filesFollowed.Add(1)
	source := s.logger.Named(filepath.Base(filePath))

	checkTicker := time.NewTicker(idleCheckInterval)
	defer checkTicker.Stop()

	lastActivity := time.Now()

	for {
		select {
		case line, ok := <-t.Lines:
			if !ok {
				return
			}
			if line == nil {
				continue
			}
			if line.Err != nil {
				s.logger.Warn("error reading file", slog.String("file", filePath), slog.Any("error", line.Err))
				continue
			}
			source.Log(s.ctx, s.config.Level, line.Text)
			s.linesForwarded.Add(1)
			lastActivity = time.Now()

		case <-checkTicker.C:
			if s.config.FileIdleTimeout > 0 && time.Since(lastActivity) > s.config.FileIdleTimeout {
				s.logger.Debug("file idle, no longer following", slog.String("file", filePath))
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) discoverFiles() ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range s.config.Paths {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid path pattern %q", pattern)
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	sort.Strings(files)
	return files, nil
}
