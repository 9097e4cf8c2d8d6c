// Package ingestlog assembles the process logger: a tagged slog handler chain
// fanning out to the console, a rotating file and, when configured, the
// batching notification sink.
package ingestlog

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Chichichkin/IngestLogger/internal/config"
	"github.com/Chichichkin/IngestLogger/internal/logging"
	"github.com/Chichichkin/IngestLogger/internal/logging/batch"
	"github.com/Chichichkin/IngestLogger/internal/logging/rotate"
	"github.com/Chichichkin/IngestLogger/internal/logging/slack"
	"github.com/Chichichkin/IngestLogger/internal/logging/webhook"
)

const notifyLoggerName = "ingestlog.notify"

type Option func(*settings)

type settings struct {
	console    io.Writer
	registerer prometheus.Registerer
}

// WithConsole replaces stdout as the console destination.
func WithConsole(w io.Writer) Option {
	return func(s *settings) {
		s.console = w
	}
}

// WithRegisterer exposes the notification sink metrics through reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *settings) {
		s.registerer = reg
	}
}

// NewNotifier returns the notifier described by opts, or nil when the
// notification channel is not configured.
func NewNotifier(opts config.Options) (logging.Notifier, error) {
	if !opts.NotifyEnabled() {
		return nil, nil
	}
	switch opts.Notify.Kind {
	case config.KindSlack, "":
		return slack.NewNotifier(opts.Notify.Token, opts.Notify.Timeout), nil
	case config.KindWebhook:
		return webhook.NewNotifier(opts.Notify.Token, opts.Notify.Timeout), nil
	}
	return nil, errors.Errorf("unknown notify kind %q", opts.Notify.Kind)
}

// New builds the process logger. The notification sink is attached only when
// notifier is non-nil and opts carries both a credential and a destination.
// Closing the returned logger drains the sink before the file is closed.
func New(ctx context.Context, opts config.Options, notifier logging.Notifier, options ...Option) (*logging.Logger, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid logging options")
	}

	s := settings{console: os.Stdout}
	for _, opt := range options {
		opt(&s)
	}

	tags := logging.Tags{Space: opts.Space, Entrypoint: opts.Entrypoint}
	local := &logging.HandlerOptions{Level: opts.MinLevel()}

	handlers := []slog.Handler{
		logging.NewLineHandler(logging.NewWriterSink(s.console), local),
	}
	var closers []func() error

	if opts.LogFile != "" {
		file, err := rotate.New(rotate.Config{
			Filename:   opts.LogFile,
			MaxSizeMB:  opts.MaxSizeMB,
			MaxBackups: opts.BackupCount,
			Interval:   rotate.Days(opts.RotationDays),
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to open log file")
		}
		handlers = append(handlers, logging.NewLineHandler(logging.NewWriterSink(file), local))
		closers = append(closers, file.Close)
	}

	if notifier != nil && opts.NotifyEnabled() {
		notifyLevel, err := config.ParseLevel(opts.Notify.Level)
		if err != nil {
			return nil, err
		}

		// delivery problems are reported on the local handlers only
		fallback := slog.New(logging.NewTagHandler(tags, logging.NewFanoutHandler(handlers...))).
			With(slog.String(logging.LoggerKey, notifyLoggerName))

		processor := batch.NewBatchProcessor(ctx, notifier, logging.Config{
			Destination:     opts.Notify.Channel,
			FlushInterval:   opts.Notify.FlushInterval,
			MaxBatchBytes:   opts.Notify.MaxBatchBytes,
			DeliveryTimeout: opts.Notify.Timeout,
		}, batch.WithFallbackLogger(fallback), batch.WithRegisterer(s.registerer))
		processor.Start()

		handlers = append(handlers, logging.NewLineHandler(processor, &logging.HandlerOptions{
			Level:          notifyLevel,
			ExcludeLoggers: opts.Notify.Exclude,
		}))
		closers = append([]func() error{processor.Close}, closers...)
	}

	root := logging.NewTagHandler(tags, logging.NewFanoutHandler(handlers...))
	return logging.NewLogger(root, closers...), nil
}
