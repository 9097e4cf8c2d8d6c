package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"

	"github.com/Chichichkin/IngestLogger/internal/ingestlog"
	"github.com/Chichichkin/IngestLogger/internal/logging"
)

const metricsShutdownTimeout = 5 * time.Second

// runtime is the state shared by every command: the process logger and the
// optional metrics endpoint.
type runtime struct {
	logger  *logging.Logger
	metrics *http.Server
}

func setup(ctx context.Context, c *cli.Context) (*runtime, error) {
	opts, err := loadOptions(c)
	if err != nil {
		return nil, err
	}

	notifier, err := ingestlog.NewNotifier(opts)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	logger, err := ingestlog.New(ctx, opts, notifier, ingestlog.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}

	rt := &runtime{logger: logger}
	if addr := c.GlobalString(metricsAddrFlagName); addr != "" {
		rt.metrics = &http.Server{
			Addr:    addr,
			Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := rt.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics endpoint stopped", slog.String("addr", addr), slog.Any("error", err))
			}
		}()
		logger.Debug("serving metrics", slog.String("addr", addr))
	}

	return rt, nil
}

// Close stops the metrics endpoint and then drains the logger.
func (rt *runtime) Close() error {
	if rt.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := rt.metrics.Shutdown(ctx); err != nil {
			rt.logger.Warn("failed to stop metrics endpoint", slog.Any("error", err))
		}
	}
	return pkgerrors.Wrap(rt.logger.Close(), "failed to close logger")
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *logging.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signalChan)
		select {
		case sig := <-signalChan:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
